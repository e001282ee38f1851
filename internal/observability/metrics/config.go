package metrics

// Config carries the constant labels attached to every series.
type Config struct {
	ServiceName string
	Environment string
}
