package errors

type (
	ServiceFoundNilArgument struct {
		Msg string
	}
	ServiceIllegalInputError struct {
		Msg string
	}
	ServiceIncorrectCredentialsError struct {
		Msg string
	}
	ServiceInvalidServiceError struct {
		Msg string
	}
)

func (e *ServiceFoundNilArgument) Error() string {
	return e.Msg
}

func (e *ServiceIllegalInputError) Error() string {
	return e.Msg
}

func (e *ServiceIncorrectCredentialsError) Error() string {
	return e.Msg
}

func (e *ServiceInvalidServiceError) Error() string {
	return e.Msg
}
