package config

// Logger logger config struct
type Logger struct {
	Level      string `validate:"oneof=trace debug info warn warning error fatal panic"`
	Format     string `validate:"oneof=text json"`
	Output     string `validate:"oneof=stdout stderr file"`
	OutputFile string `validate:"required_if=Output file"`
}

func getLoggerConfig(r *reader) *Logger {
	return &Logger{
		Level:      r.string(KeyLogLevel),
		Format:     r.string(KeyLogFormat),
		Output:     r.string(KeyLogOutput),
		OutputFile: r.string(KeyLogOutputFile),
	}
}
