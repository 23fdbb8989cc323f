package assistant

// Device is the discovery descriptor returned in a SYNC response.
type Device struct {
	ID              string     `json:"id"`
	Type            string     `json:"type"`
	Traits          []string   `json:"traits"`
	Name            DeviceName `json:"name"`
	WillReportState bool       `json:"willReportState"`
}

// DeviceName holds the display name and optional nicknames of a device.
type DeviceName struct {
	Name      string   `json:"name,omitempty"`
	Nicknames []string `json:"nicknames,omitempty"`
}

// QueryResult is the normalized state returned in a QUERY response.
// Online is always true: liveness tracking is unimplemented.
type QueryResult struct {
	On         bool `json:"on"`
	Online     bool `json:"online"`
	Brightness int  `json:"brightness"`
}

// Invocation is a resolved home-bus service call: the service name and its
// arguments. Data always contains the entity_id key.
type Invocation struct {
	Service string         `json:"service"`
	Data    map[string]any `json:"data"`
}

// EntityID returns the entity the invocation targets, or "" if the data map
// was tampered with.
func (inv Invocation) EntityID() string {
	id, _ := inv.Data[AttrEntityID].(string)
	return id
}

// Logger is the minimal logging interface the translator needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Translator converts entity snapshots and assistant commands between the
// registry's representation and the Actions API representation.
//
// The zero cost of construction is intentional: a Translator holds no state
// beyond an optional logger, and all methods are safe for concurrent use.
type Translator struct {
	logger Logger
}

// New creates a Translator with logging disabled.
func New() *Translator {
	return &Translator{logger: noopLogger{}}
}

// SetLogger sets the logger used for non-fatal translation warnings.
func (t *Translator) SetLogger(logger Logger) {
	t.logger = logger
}

// floatValue extracts a numeric value from a JSON-decoded map.
// JSON numbers decode as float64, but attributes written by Go code may be
// int; both are accepted. Anything else (including an explicit null) reports
// ok=false.
func floatValue(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// intValue extracts an integer bitmask value from a JSON-decoded map,
// defaulting to 0 when absent or non-numeric.
func intValue(m map[string]any, key string) int64 {
	f, ok := floatValue(m, key)
	if !ok {
		return 0
	}
	return int64(f)
}

// stringValue extracts a string value, reporting ok=false for other types.
func stringValue(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// stringList coerces a JSON array of strings. A list containing a
// non-string element is rejected as a whole, same as a non-list value.
func stringList(v any) ([]string, bool) {
	switch val := v.(type) {
	case []string:
		return val, true
	case []any:
		out := make([]string, 0, len(val))
		for _, elem := range val {
			s, ok := elem.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
