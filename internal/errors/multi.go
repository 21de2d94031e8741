package errors

type MultiError struct {
	msg    string
	errors []error
}

func NewMultiError(msg string) *MultiError {
	return &MultiError{
		msg: msg,
	}
}

func (m *MultiError) Append(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// ToErr flattens the collector: nil when nothing was appended,
// the MultiError itself otherwise.
func (m *MultiError) ToErr() error {
	if len(m.errors) == 0 {
		return nil
	}
	return m
}

func (m *MultiError) Error() string {
	errStr := m.msg + ": "
	for _, err := range m.errors {
		errStr = errStr + ": " + err.Error() + "\n"
	}
	return errStr
}
