package engine

import "fmt"

// OptionKind is the UCI option type advertised for a tunable.
type OptionKind string

const (
	OptionSpin   OptionKind = "spin"
	OptionString OptionKind = "string"
)

// Option is a single named, bounded engine tunable. The same shape backs
// every UCI "option" line and every SPSA workload line, so a tuner and a
// GUI read the identical name/default/min/max triple.
type Option struct {
	Name  string
	Kind  OptionKind
	Value float64
	Min   float64
	Max   float64
}

// String renders the option as a UCI "option name ... type ..." line.
func (o *Option) String() string {
	if o.Kind == OptionString {
		return fmt.Sprintf("option name %s type string default %s", o.Name, formatTunable(o.Value))
	}
	return fmt.Sprintf("option name %s type spin default %s min %s max %s",
		o.Name, formatTunable(o.Value), formatTunable(o.Min), formatTunable(o.Max))
}

// FmtSPSA renders the option as one line of an SPSA tuning workload:
// name, type, value, min, max, c-end, r-end.
func (o *Option) FmtSPSA() string {
	typ := "int"
	if o.Value != float64(int64(o.Value)) || o.Kind == OptionString {
		typ = "float"
	}
	return fmt.Sprintf("%s, %s, %s, %s, %s, 2.25, 0.002", o.Name, typ, formatTunable(o.Value), formatTunable(o.Min), formatTunable(o.Max))
}

func formatTunable(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func (o *Option) Int() int        { return int(o.Value) }
func (o *Option) U8() uint8       { return uint8(o.Value) }
func (o *Option) U64() uint64     { return uint64(o.Value) }
func (o *Option) SetFromString(s string) {
	var f float64
	if _, err := fmt.Sscanf(s, "%g", &f); err == nil {
		if f < o.Min {
			f = o.Min
		}
		if f > o.Max {
			f = o.Max
		}
		o.Value = f
	}
}

// Config holds every search tunable exposed as a UCI option: spin for the
// integer ones, string for the four fractional LMR constants. Defaults
// mirror a Pluto-family engine's tuned constants; a GUI or SPSA harness can
// override any of them with "setoption".
type Config struct {
	MoveOverhead Option
	Threads      Option
	Hash         Option

	QSearchDepth Option

	RFPDepth              Option
	RFPBaseMargin         Option
	RFPReductionImproving Option

	FPDepthMargin       Option
	FPBaseMargin        Option
	FPMarginDepthFactor Option

	NMPDepth            Option
	NMPMargin           Option
	NMPDivisor          Option
	NMPDivisorImproving Option

	LMPMoveMargin  Option
	LMPDepthFactor Option

	LMRDepth         Option
	LMRMoveMargin    Option
	LMRQuietMargin   Option
	LMRQuietDivisor  Option
	LMRBaseMargin    Option
	LMRBaseDivisor   Option

	MOTTEntryValue Option
	MOCaptureValue Option
	MOKillerValue  Option

	TCTimeDivisor   Option
	TCElapsedFactor Option
}

// NewConfig returns a Config populated with default tunable values.
func NewConfig() *Config {
	return &Config{
		MoveOverhead: Option{Name: "MoveOverhead", Kind: OptionSpin, Value: 0, Min: 0, Max: 10000},
		Threads:      Option{Name: "Threads", Kind: OptionSpin, Value: 1, Min: 1, Max: 1},
		Hash:         Option{Name: "Hash", Kind: OptionSpin, Value: 255, Min: 1, Max: 1024},

		QSearchDepth: Option{Name: "QSearchDepth", Kind: OptionSpin, Value: 15, Min: 1, Max: 20},

		RFPDepth:              Option{Name: "RFPDepth", Kind: OptionSpin, Value: 11, Min: 1, Max: 20},
		RFPBaseMargin:         Option{Name: "RFPBaseMargin", Kind: OptionSpin, Value: 55, Min: 1, Max: 200},
		RFPReductionImproving: Option{Name: "RFPReductionImproving", Kind: OptionSpin, Value: 23, Min: 1, Max: 200},

		FPDepthMargin:       Option{Name: "FPDepthMargin", Kind: OptionSpin, Value: 7, Min: 1, Max: 20},
		FPBaseMargin:        Option{Name: "FPBaseMargin", Kind: OptionSpin, Value: 40, Min: 1, Max: 200},
		FPMarginDepthFactor: Option{Name: "FPMarginDepthFactor", Kind: OptionSpin, Value: 30, Min: 1, Max: 200},

		NMPDepth:            Option{Name: "NMPDepth", Kind: OptionSpin, Value: 5, Min: 1, Max: 20},
		NMPMargin:           Option{Name: "NMPMargin", Kind: OptionSpin, Value: 10, Min: 1, Max: 20},
		NMPDivisor:          Option{Name: "NMPDivisor", Kind: OptionSpin, Value: 6, Min: 1, Max: 20},
		NMPDivisorImproving: Option{Name: "NMPDivisorImproving", Kind: OptionSpin, Value: 5, Min: 1, Max: 20},

		LMPMoveMargin:  Option{Name: "LMPMoveMargin", Kind: OptionSpin, Value: 2, Min: 1, Max: 20},
		LMPDepthFactor: Option{Name: "LMPDepthFactor", Kind: OptionSpin, Value: 5, Min: 1, Max: 20},

		LMRDepth:        Option{Name: "LMRDepth", Kind: OptionSpin, Value: 12, Min: 1, Max: 20},
		LMRMoveMargin:   Option{Name: "LMRMoveMargin", Kind: OptionSpin, Value: 9, Min: 1, Max: 20},
		LMRQuietMargin:  Option{Name: "LMRQuietMargin", Kind: OptionString, Value: 2.74, Min: 0.0, Max: 10.0},
		LMRQuietDivisor: Option{Name: "LMRQuietDivisor", Kind: OptionString, Value: 1.65, Min: 1.0, Max: 10.0},
		LMRBaseMargin:   Option{Name: "LMRBaseMargin", Kind: OptionString, Value: 0.25, Min: 0.0, Max: 10.0},
		LMRBaseDivisor:  Option{Name: "LMRBaseDivisor", Kind: OptionString, Value: 1.7, Min: 1.0, Max: 10.0},

		MOTTEntryValue: Option{Name: "MOTTEntryValue", Kind: OptionSpin, Value: 233, Min: 1, Max: 500},
		MOCaptureValue: Option{Name: "MOCaptureValue", Kind: OptionSpin, Value: 60, Min: 0, Max: 500},
		MOKillerValue:  Option{Name: "MOKillerValue", Kind: OptionSpin, Value: 76, Min: 0, Max: 500},

		TCTimeDivisor:   Option{Name: "TCTimeDivisor", Kind: OptionSpin, Value: 8, Min: 2, Max: 100},
		TCElapsedFactor: Option{Name: "TCElapsedFactor", Kind: OptionSpin, Value: 5, Min: 1, Max: 10},
	}
}

// all returns every option in declaration order, used for uci/print-spsa output.
func (c *Config) all() []*Option {
	return []*Option{
		&c.MoveOverhead, &c.Threads, &c.Hash,
		&c.QSearchDepth,
		&c.RFPDepth, &c.RFPBaseMargin, &c.RFPReductionImproving,
		&c.FPDepthMargin, &c.FPBaseMargin, &c.FPMarginDepthFactor,
		&c.NMPDepth, &c.NMPMargin, &c.NMPDivisor, &c.NMPDivisorImproving,
		&c.LMPMoveMargin, &c.LMPDepthFactor,
		&c.LMRDepth, &c.LMRMoveMargin, &c.LMRQuietMargin, &c.LMRQuietDivisor, &c.LMRBaseMargin, &c.LMRBaseDivisor,
		&c.MOTTEntryValue, &c.MOCaptureValue, &c.MOKillerValue,
		&c.TCTimeDivisor, &c.TCElapsedFactor,
	}
}

// UCIOptionLines renders every tunable as a UCI "option" line, in the order
// the identify response should list them.
func (c *Config) UCIOptionLines() []string {
	opts := c.all()
	lines := make([]string, len(opts))
	for i, o := range opts {
		lines[i] = o.String()
	}
	return lines
}

// SPSAWorkloadLines renders the tunables (excluding MoveOverhead/Threads/Hash,
// which aren't search-behavior parameters) as an SPSA tuning workload.
func (c *Config) SPSAWorkloadLines() []string {
	tunable := []*Option{
		&c.QSearchDepth,
		&c.RFPDepth, &c.RFPBaseMargin, &c.RFPReductionImproving,
		&c.FPBaseMargin, &c.FPDepthMargin, &c.FPMarginDepthFactor,
		&c.NMPDepth, &c.NMPMargin, &c.NMPDivisor, &c.NMPDivisorImproving,
		&c.LMPMoveMargin, &c.LMPDepthFactor,
		&c.LMRDepth, &c.LMRMoveMargin, &c.LMRQuietMargin, &c.LMRQuietDivisor, &c.LMRBaseMargin, &c.LMRBaseDivisor,
		&c.MOTTEntryValue, &c.MOCaptureValue, &c.MOKillerValue,
		&c.TCTimeDivisor, &c.TCElapsedFactor,
	}
	lines := make([]string, len(tunable))
	for i, o := range tunable {
		lines[i] = o.FmtSPSA()
	}
	return lines
}

// SetOption applies a UCI "setoption" name/value pair. Hash is handled by the
// caller (it requires reallocating the transposition table); every other
// name maps directly onto a tunable.
func (c *Config) SetOption(name, value string) bool {
	for _, o := range c.all() {
		if o.Name == name {
			o.SetFromString(value)
			return true
		}
	}
	return false
}
