package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cardlogic/warsat/internal/rules"
	"github.com/cardlogic/warsat/internal/solve"
)

// Scenario is one conformance test case.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Game        Game    `yaml:"game"`
	Checks      []Check `yaml:"checks"`
}

// Game describes the theory to build. Zero fields fall back to the
// default configuration.
type Game struct {
	PlayerA          string      `yaml:"player_a,omitempty"`
	PlayerB          string      `yaml:"player_b,omitempty"`
	Ranks            []int       `yaml:"ranks,omitempty"`
	MaxWarDepth      *int        `yaml:"max_war_depth,omitempty"`
	StackedTolerance int         `yaml:"stacked_tolerance,omitempty"`
	Pins             []solve.Pin `yaml:"pins,omitempty"`
}

// Check is a single assertion against the theory.
type Check struct {
	Type   string   `yaml:"type"`
	Prop   string   `yaml:"prop,omitempty"`
	Over   []string `yaml:"over,omitempty"`
	Expect *bool    `yaml:"expect,omitempty"` // boolean checks; nil means true
	Total  *int     `yaml:"total,omitempty"`  // count_total
	Num    *int     `yaml:"num,omitempty"`    // likelihood
	Den    *int     `yaml:"den,omitempty"`    // likelihood
}

// Check type constants.
const (
	CheckSatisfiable = "satisfiable"
	CheckEntailed    = "entailed"
	CheckExcluded    = "excluded"
	CheckCountTotal  = "count_total"
	CheckLikelihood  = "likelihood"
)

// Load reads and parses a scenario file. Unknown fields are rejected so
// typos fail loudly instead of silently skipping a check.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks structural requirements before any theory is built.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	if len(s.Checks) == 0 {
		return fmt.Errorf("scenario %q has no checks", s.Name)
	}
	for i, c := range s.Checks {
		switch c.Type {
		case CheckSatisfiable:
		case CheckEntailed, CheckExcluded:
			if c.Prop == "" {
				return fmt.Errorf("check %d: type %q requires prop", i, c.Type)
			}
		case CheckCountTotal:
			if c.Total == nil {
				return fmt.Errorf("check %d: count_total requires total", i)
			}
		case CheckLikelihood:
			if c.Prop == "" || c.Num == nil || c.Den == nil {
				return fmt.Errorf("check %d: likelihood requires prop, num and den", i)
			}
		default:
			return fmt.Errorf("check %d: unknown type %q", i, c.Type)
		}
	}
	return nil
}

// Config materializes the scenario's game section over the defaults.
func (g Game) Config() rules.Config {
	cfg := rules.DefaultConfig()
	if g.PlayerA != "" {
		cfg.PlayerA = g.PlayerA
	}
	if g.PlayerB != "" {
		cfg.PlayerB = g.PlayerB
	}
	if len(g.Ranks) > 0 {
		cfg.Ranks = g.Ranks
		cfg.MaxWarDepth = len(g.Ranks) - 1
	}
	if g.MaxWarDepth != nil {
		cfg.MaxWarDepth = *g.MaxWarDepth
	}
	cfg.StackedTolerance = g.StackedTolerance
	return cfg
}

// CheckResult records one executed check.
type CheckResult struct {
	Desc string `json:"desc"`
	Pass bool   `json:"pass"`
	Got  string `json:"got"`
}

// Report is the outcome of running a scenario.
type Report struct {
	Scenario string        `json:"scenario"`
	Results  []CheckResult `json:"results"`
}

// Failures counts failed checks.
func (r *Report) Failures() int {
	n := 0
	for _, res := range r.Results {
		if !res.Pass {
			n++
		}
	}
	return n
}

// Render writes the report in the fixed text layout used for golden
// comparison and CLI output.
func (r *Report) Render() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "scenario %s\n", r.Scenario)
	for _, res := range r.Results {
		status := "PASS"
		if !res.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&buf, "  %s %s (got %s)\n", status, res.Desc, res.Got)
	}
	fmt.Fprintf(&buf, "%d checks, %d failures\n", len(r.Results), r.Failures())
	return buf.String()
}

// Run builds the scenario's theory and executes every check. A
// construction failure is an error; a failed check is an ordinary
// result.
func Run(sc *Scenario, opts ...solve.Option) (*Report, error) {
	sess, err := solve.NewSession(sc.Game.Config(), sc.Game.Pins, opts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	report := &Report{Scenario: sc.Name}
	for _, c := range sc.Checks {
		res, err := runCheck(sess, c)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

func runCheck(sess *solve.Session, c Check) (CheckResult, error) {
	expect := true
	if c.Expect != nil {
		expect = *c.Expect
	}
	switch c.Type {
	case CheckSatisfiable:
		got, err := sess.Analyzer.Satisfiable()
		if err != nil {
			return CheckResult{}, err
		}
		return CheckResult{
			Desc: fmt.Sprintf("satisfiable=%t", expect),
			Pass: got == expect,
			Got:  fmt.Sprintf("%t", got),
		}, nil
	case CheckEntailed:
		got, err := sess.Analyzer.Entailed(c.Prop)
		if err != nil {
			return CheckResult{}, err
		}
		return CheckResult{
			Desc: fmt.Sprintf("entailed(%s)=%t", c.Prop, expect),
			Pass: got == expect,
			Got:  fmt.Sprintf("%t", got),
		}, nil
	case CheckExcluded:
		got, err := sess.Analyzer.Excluded(c.Prop)
		if err != nil {
			return CheckResult{}, err
		}
		return CheckResult{
			Desc: fmt.Sprintf("excluded(%s)=%t", c.Prop, expect),
			Pass: got == expect,
			Got:  fmt.Sprintf("%t", got),
		}, nil
	case CheckCountTotal:
		counts, err := sess.Analyzer.CountModels(c.Over)
		if err != nil {
			return CheckResult{}, err
		}
		return CheckResult{
			Desc: fmt.Sprintf("count(%v)=%d", c.Over, *c.Total),
			Pass: counts.Total == *c.Total,
			Got:  fmt.Sprintf("%d", counts.Total),
		}, nil
	case CheckLikelihood:
		lk, err := sess.Analyzer.Likelihood(c.Prop, c.Over)
		if err != nil {
			return CheckResult{}, err
		}
		return CheckResult{
			Desc: fmt.Sprintf("likelihood(%s)=%d/%d", c.Prop, *c.Num, *c.Den),
			Pass: lk.Num == *c.Num && lk.Den == *c.Den,
			Got:  fmt.Sprintf("%d/%d", lk.Num, lk.Den),
		}, nil
	}
	return CheckResult{}, fmt.Errorf("unknown check type %q", c.Type)
}
