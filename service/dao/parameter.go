package dao

// Parameter narrows a List call
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a parameter; several values form an OR set
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}

// StateParameter filters records by state name
func StateParameter(states ...string) *Parameter {
	return NewParameter(ParameterState, states...)
}

// OwnerParameter filters records by owner label
func OwnerParameter(owner string) *Parameter {
	return NewParameter(ParameterOwner, owner)
}

const (
	ParameterState = "State"
	ParameterOwner = "Owner"
)
