package commands

// Error messages
const (
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrIngestSourceRequired     = "a CSV file or --sample is required"
	ErrIngestSourceConflict     = "use either a CSV file or --sample, not both"
)

// Success messages
const (
	MsgConfigurationValid = "Configuration valid"
)
