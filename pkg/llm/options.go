package llm

// Options contains model inference parameters.
type Options struct {
	Temperature *float64 `json:"temperature,omitempty" toml:"temperature"` // Creativity (0.0-2.0)
	TopP        *float64 `json:"top_p,omitempty" toml:"top_p"`             // Nucleus sampling threshold
	Seed        *int     `json:"seed,omitempty" toml:"seed"`               // Random seed for reproducibility

	NumPredict *int `json:"num_predict,omitempty" toml:"num_predict"` // Max tokens to generate
	NumCtx     *int `json:"num_ctx,omitempty" toml:"num_ctx"`         // Context window size
}

// Empty reports whether no option is set.
func (o *Options) Empty() bool {
	return o == nil || (o.Temperature == nil && o.TopP == nil && o.Seed == nil && o.NumPredict == nil && o.NumCtx == nil)
}
