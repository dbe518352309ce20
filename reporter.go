package settings

// ReportLevel classifies user-facing status messages.
type ReportLevel string

const (
	ReportInfo  ReportLevel = "info"
	ReportWarn  ReportLevel = "warn"
	ReportError ReportLevel = "error"
)

// Reporter receives user-facing status messages (validation detail,
// conflict notices, generic transport failures). Presentation is owned by
// the consumer; the default reporter discards everything.
type Reporter interface {
	Report(level ReportLevel, message string)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(level ReportLevel, message string)

// Report implements Reporter.
func (f ReporterFunc) Report(level ReportLevel, message string) {
	if f != nil {
		f(level, message)
	}
}

type noopReporter struct{}

func (noopReporter) Report(ReportLevel, string) {}
