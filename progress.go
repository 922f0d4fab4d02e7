package carve

import "log"

// Progress is the callback contract a caller supplies to observe a resize.
// Init/End bracket one axis of a resize (width or height); Update is called
// at a rate governed by UpdateStep, with a fraction in [0,1].
type Progress interface {
	Init(message string)
	Update(fraction float64)
	End(message string)
}

// Logger is the minimal sink the carver uses for non-fatal warnings, such
// as an unrecognised VMap tag. Library code never calls log.Fatal itself;
// that decision belongs to a caller.
type Logger interface {
	Printf(format string, args ...any)
}

type stdLogger struct{}

func (stdLogger) Printf(format string, args ...any) { log.Printf(format, args...) }

// defaultLogger is used whenever a Carver is constructed without an
// explicit Logger.
var defaultLogger Logger = stdLogger{}

// nullProgress satisfies Progress while doing nothing; it's the default for
// a Carver that never had one configured.
type nullProgress struct{}

func (nullProgress) Init(string)      {}
func (nullProgress) Update(float64)   {}
func (nullProgress) End(string)       {}

// progressSpec bundles the four message strings and the update-step contract
// described in §6, so SetProgress can be given both the callback and its
// framing text in one call.
type progressSpec struct {
	reporter Progress

	initWidthMessage  string
	initHeightMessage string
	endWidthMessage   string
	endHeightMessage  string

	updateStep float64
}

func newProgressSpec() *progressSpec {
	return &progressSpec{
		reporter:          nullProgress{},
		initWidthMessage:  "carving width...",
		initHeightMessage: "carving height...",
		endWidthMessage:   "width done",
		endHeightMessage:  "height done",
		updateStep:        0.05,
	}
}
