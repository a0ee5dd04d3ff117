package stack

// PreconditionError is the panic value for calls the Manager cannot honour,
// such as popping an empty stack.
type PreconditionError struct {
	Op      string
	Message string
}

func (e *PreconditionError) Error() string {
	return "stack: " + e.Op + ": " + e.Message
}

func precondition(op, message string) {
	panic(&PreconditionError{Op: op, Message: message})
}
