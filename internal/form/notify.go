package form

import (
	"fmt"

	"github.com/mesh-intelligence/bikeledger/pkg/types"
)

// Level is the severity of a Notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

var levelNames = map[Level]string{
	LevelInfo:    "info",
	LevelWarning: "warning",
	LevelError:   "error",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// MarshalText encodes the level by name so JSON output reads "warning"
// rather than 1.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Notification is the user-visible outcome of a controller call.
// Rule is set on warnings and names the validation rule that failed.
type Notification struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Rule    string `json:"rule,omitempty"`
}

func (n Notification) String() string {
	return fmt.Sprintf("[%s] %s: %s", n.Level, n.Title, n.Message)
}

// Notifier presents notifications to the user.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Notification titles and texts.
const (
	titleSuccess    = "Success"
	titleInputError = "Input Error"
	titleError      = "Error"

	msgAdded = "Bike added successfully."
)

// warningMessages maps a validation reason to the text shown to the user.
var warningMessages = map[string]string{
	types.ReasonMissingField:    "Please fill all fields",
	types.ReasonNonNumericYear:  "Years must be numbers",
	types.ReasonNonNumericPrice: "Price must be a number",
}
