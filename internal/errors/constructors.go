package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *PipelineError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *PipelineError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *PipelineError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Pipeline stage errors

func SetupFailed(step string, cause error) *PipelineError {
	return Wrap(cause, CategorySetup, SeverityFatal, "environment setup failed").
		WithContext("step", step)
}

func GeneratorFailed(command string, cause error) *PipelineError {
	return Wrap(cause, CategoryGenerator, SeverityFatal, "site generator failed").
		WithContext("command", command)
}

func ArtifactInvalid(dir, reason string) *PipelineError {
	return New(CategoryGenerator, SeverityFatal, "build artifact invalid").
		WithContext("dir", dir).
		WithContext("reason", reason)
}

func PublishFailed(branch string, cause error) *PipelineError {
	return Wrap(cause, CategoryPublish, SeverityFatal, "publish to hosting branch failed").
		WithContext("branch", branch)
}

// Git errors

func GitCloneError(repo string, cause error) *PipelineError {
	return Wrap(cause, CategoryGit, SeverityFatal, "repository clone failed").
		WithContext("repository", repo)
}

func GitAuthError(repo string, cause error) *PipelineError {
	return Wrap(cause, CategoryAuth, SeverityFatal, "repository authentication failed").
		WithContext("repository", repo)
}

func WorkspaceError(operation string, cause error) *PipelineError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "workspace operation failed").
		WithContext("operation", operation)
}
