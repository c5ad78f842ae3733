package orchestrator

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelFatal   Level = "fatal"
)

// Notice is a user-visible message about an operation's outcome.
type Notice struct {
	Level       Level
	Title       string
	Description string
}

// Notifier delivers notices to the presentation layer.
type Notifier interface {
	Notify(n Notice)
}

type NopNotifier struct{}

func (NopNotifier) Notify(Notice) {}
