package supervisor

// unknownServiceError signals a name that is not in the registry.
type unknownServiceError struct{ name string }

func (e unknownServiceError) Error() string { return "unknown service: " + e.name }

// ErrUnknownService constructs an unknownServiceError.
func ErrUnknownService(name string) error { return unknownServiceError{name: name} }

// IsUnknownService reports whether err indicates a name missing from the registry.
func IsUnknownService(err error) bool {
	_, ok := err.(unknownServiceError)
	return ok
}

// prerequisiteMissingError signals an absent executable or entry point for a
// service, so activation of other names can continue.
type prerequisiteMissingError struct {
	name string
	path string
}

func (e prerequisiteMissingError) Error() string {
	return "prerequisite missing for " + e.name + ": " + e.path
}

// ErrPrerequisiteMissing constructs a prerequisiteMissingError.
func ErrPrerequisiteMissing(name, path string) error {
	return prerequisiteMissingError{name: name, path: path}
}

// IsPrerequisiteMissing reports whether err indicates a missing runtime prerequisite.
func IsPrerequisiteMissing(err error) bool {
	_, ok := err.(prerequisiteMissingError)
	return ok
}
