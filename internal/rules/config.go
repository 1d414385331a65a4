package rules

import "fmt"

// Config describes the shape of the modeled round.
type Config struct {
	// PlayerA and PlayerB name the two players. Names appear verbatim in
	// proposition identifiers.
	PlayerA string
	PlayerB string

	// Ranks is the set of card ranks in play, higher value beats lower.
	// Defaults to 2..14 (thirteen ranks, ace high).
	Ranks []int

	// MaxWarDepth bounds the war escalation. Level 0 is the initial
	// reveal; each war adds one level, so MaxWarDepth+1 reveals are
	// modeled per player. A player never reveals the same rank twice, so
	// the depth can be at most len(Ranks)-1.
	MaxWarDepth int

	// StackedTolerance is the number of ranks the two decks may share
	// across modeled reveals before the deck counts as stacked. 0 means
	// any shared rank marks the deck stacked.
	StackedTolerance int
}

// DefaultConfig returns the standard two-player setup: ranks 2..14 and
// the war escalation bounded only by deck exhaustion.
func DefaultConfig() Config {
	ranks := make([]int, 0, 13)
	for r := 2; r <= 14; r++ {
		ranks = append(ranks, r)
	}
	return Config{
		PlayerA:     "A",
		PlayerB:     "B",
		Ranks:       ranks,
		MaxWarDepth: len(ranks) - 1,
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.PlayerA == "" || c.PlayerB == "" {
		return fmt.Errorf("rules: both player names are required")
	}
	if c.PlayerA == c.PlayerB {
		return fmt.Errorf("rules: players must be distinct, both are %q", c.PlayerA)
	}
	if len(c.Ranks) < 2 {
		return fmt.Errorf("rules: at least two ranks required, got %d", len(c.Ranks))
	}
	seen := make(map[int]bool, len(c.Ranks))
	for _, r := range c.Ranks {
		if seen[r] {
			return fmt.Errorf("rules: duplicate rank %d", r)
		}
		seen[r] = true
	}
	if c.MaxWarDepth < 0 {
		return fmt.Errorf("rules: war depth must be non-negative, got %d", c.MaxWarDepth)
	}
	// Each level consumes one distinct rank per player.
	if c.MaxWarDepth > len(c.Ranks)-1 {
		return fmt.Errorf("rules: war depth %d exceeds deck: at most %d with %d ranks",
			c.MaxWarDepth, len(c.Ranks)-1, len(c.Ranks))
	}
	if c.StackedTolerance < 0 || c.StackedTolerance >= len(c.Ranks) {
		return fmt.Errorf("rules: stacked tolerance %d out of range [0,%d)",
			c.StackedTolerance, len(c.Ranks))
	}
	return nil
}

// Levels returns the number of modeled reveals per player.
func (c Config) Levels() int { return c.MaxWarDepth + 1 }
