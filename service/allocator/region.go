package allocator

import (
	"fmt"

	"github.com/farxan99/OsSimulator/model/task"
)

// MaxRegionCells caps the number of cells a single region may span
const MaxRegionCells = 1 << 20

// Page identifies a cell unit in the flux cache. Keying by task and unit keeps
// regions of different tasks from colliding on the same unit ordinal.
type Page struct {
	TaskID task.ID `json:"taskID"`
	Unit   int     `json:"unit"`
}

func (p Page) String() string {
	return fmt.Sprintf("%d:%d", p.TaskID, p.Unit)
}

// Cell is a fixed-size partition of a task region
type Cell struct {
	Unit int  `json:"unit"`
	Size int  `json:"size"`
	Page Page `json:"page"`
}

// Region is the ordered set of cells owned by a task
type Region struct {
	TaskID    task.ID `json:"taskID"`
	Magnitude int     `json:"magnitude"`
	CellSize  int     `json:"cellSize"`
	Cells     []Cell  `json:"cells"`
}

// Len returns the number of cell units
func (r *Region) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Cells)
}

func newRegion(taskID task.ID, magnitude, cellSize int) (*Region, error) {
	count, err := UnitCount(magnitude, cellSize)
	if err != nil {
		return nil, err
	}
	if count > MaxRegionCells {
		return nil, fmt.Errorf("%w: %d needs %d cells, limit %d", ErrInvalidMagnitude, magnitude, count, MaxRegionCells)
	}
	ret := &Region{TaskID: taskID, Magnitude: magnitude, CellSize: cellSize, Cells: make([]Cell, count)}
	for i := range ret.Cells {
		ret.Cells[i] = Cell{Unit: i, Size: cellSize, Page: Page{TaskID: taskID, Unit: i}}
	}
	return ret, nil
}

// UnitCount returns ceil(magnitude / cellSize)
func UnitCount(magnitude, cellSize int) (int, error) {
	if cellSize <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCellSize, cellSize)
	}
	if magnitude < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidMagnitude, magnitude)
	}
	count := magnitude / cellSize
	if magnitude%cellSize != 0 {
		count++
	}
	return count, nil
}
