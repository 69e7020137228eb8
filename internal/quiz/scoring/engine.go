package scoring

// Band is a qualitative performance label derived from the final ratio.
type Band string

const (
	BandGood     Band = "good"
	BandModerate Band = "moderate"
	BandPoor     Band = "poor"
)

// BandConfig holds the ratio thresholds (defaults match the product copy).
type BandConfig struct {
	GoodAbove     float64 // default: 0.7
	ModerateAbove float64 // default: 0.4
}

// DefaultBandConfig returns production defaults.
func DefaultBandConfig() BandConfig {
	return BandConfig{
		GoodAbove:     0.7,
		ModerateAbove: 0.4,
	}
}

// Engine awards points per answer and bands final results.
type Engine struct {
	config BandConfig
}

// NewEngine creates a scoring engine with the provided config.
func NewEngine(config BandConfig) *Engine {
	return &Engine{config: config}
}

// Award returns the points for a single locked answer: one for correct, none otherwise.
func (e *Engine) Award(isCorrect bool) int {
	if !isCorrect {
		return 0
	}
	return 1
}

// Ratio is score/total, or 0 for an empty quiz.
func Ratio(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total)
}

// Band maps a ratio onto good / moderate / poor.
// Both thresholds are exclusive: exactly 0.7 is moderate, exactly 0.4 is poor.
func (e *Engine) Band(ratio float64) Band {
	switch {
	case ratio > e.config.GoodAbove:
		return BandGood
	case ratio > e.config.ModerateAbove:
		return BandModerate
	default:
		return BandPoor
	}
}

// Result is the banded outcome of a finished quiz.
type Result struct {
	Score int     `json:"score"`
	Total int     `json:"total"`
	Ratio float64 `json:"ratio"`
	Band  Band    `json:"band"`
}

// Final computes the result for score out of total. It is never stored, only derived.
func (e *Engine) Final(score, total int) Result {
	ratio := Ratio(score, total)
	return Result{
		Score: score,
		Total: total,
		Ratio: ratio,
		Band:  e.Band(ratio),
	}
}
