package kernel

import "github.com/farxan99/OsSimulator/model/task"

// queue is an ordered list of task IDs
type queue struct {
	ids []task.ID
}

func (q *queue) push(id task.ID) {
	q.ids = append(q.ids, id)
}

func (q *queue) len() int {
	return len(q.ids)
}

func (q *queue) indexOf(id task.ID) int {
	for i, candidate := range q.ids {
		if candidate == id {
			return i
		}
	}
	return -1
}

func (q *queue) removeAt(index int) task.ID {
	id := q.ids[index]
	q.ids = append(q.ids[:index], q.ids[index+1:]...)
	return id
}

// remove deletes id, reporting whether it was queued
func (q *queue) remove(id task.ID) bool {
	index := q.indexOf(id)
	if index == -1 {
		return false
	}
	q.removeAt(index)
	return true
}

// drain empties the queue returning its IDs in order
func (q *queue) drain() []task.ID {
	ret := q.ids
	q.ids = nil
	return ret
}

func (q *queue) snapshot() []task.ID {
	ret := make([]task.ID, len(q.ids))
	copy(ret, q.ids)
	return ret
}
