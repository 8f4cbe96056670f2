// Package diagnostics holds the records components emit for status and config dumps.
package diagnostics

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Diagnostic is one event worth surfacing to an operator.
type Diagnostic struct {
	Severity       Severity `json:"severity"`
	Code           string   `json:"code"`
	Summary        string   `json:"summary"`
	Detail         string   `json:"detail,omitempty"`
	LikelyCauses   []string `json:"likely_causes,omitempty"`
	SuggestedFixes []string `json:"suggested_fixes,omitempty"`
}

type hint struct {
	causes, fixes []string
}

var hints = map[string]hint{
	"SEESAW.FAILED": {
		causes: []string{"no device at the configured address", "SDA/SCL swapped or unpowered board", "chip is not a seesaw (unknown hardware ID)"},
		fixes:  []string{"check address/wiring with i2cdetect", "set address to the board's jumper setting"},
	},
	"SENSOR.SETUP": {
		causes: []string{"bus error while writing the GPIO direction or pull registers"},
		fixes:  []string{"check the bus for noise or a loose connector"},
	},
	"LIGHT.SETUP": {
		causes: []string{"num_leds too large for the color order", "NeoPixel pin not supported by the firmware"},
		fixes:  []string{"lower light.num_leds", "check light.pin against the board pinout"},
	},
}

// Hints returns the known causes and fixes for code, if any.
func Hints(code string) (causes, fixes []string) {
	h := hints[code]
	return h.causes, h.fixes
}

// Report is the configuration dump of one component.
type Report struct {
	Component string            `json:"component"`
	Failed    bool              `json:"failed"`
	Fields    map[string]string `json:"fields"`
}

func NewReport(component string) Report {
	return Report{Component: component, Fields: map[string]string{}}
}

func (r Report) With(key, value string) Report {
	r.Fields[key] = value
	return r
}

// FromError builds the diagnostic sent when a component is marked failed.
func FromError(code, summary string, err error) Diagnostic {
	d := Diagnostic{Severity: Err, Code: code, Summary: summary}
	d.LikelyCauses, d.SuggestedFixes = Hints(code)
	if err != nil {
		d.Detail = err.Error()
	}
	return d
}
