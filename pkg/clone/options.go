package clone

// Default transfer parameters.
const (
	DefaultRetries   = 3
	DefaultBlockSize = 0x80
)

// Config holds the Engine options.
type Config struct {
	Retries   int
	BlockSize int
	Verify    bool
	Reset     bool
	// Regions lists what Upload writes. Download always reads the
	// whole image.
	Regions   []Region
	Validator Validator
	Notifiers []StateNotifier
	Progress  []ProgressFunc
}

// Option configures an Engine.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Retries:   DefaultRetries,
		BlockSize: DefaultBlockSize,
		Verify:    true,
	}
}

// WithRetries sets how many times a failed block is retried.
func WithRetries(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.Retries = n
		}
	}
}

// WithBlockSize sets the bytes moved per exchange.
func WithBlockSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.BlockSize = n
		}
	}
}

// WithVerify enables or disables read-after-write verification.
func WithVerify(verify bool) Option {
	return func(c *Config) {
		c.Verify = verify
	}
}

// WithReset reboots the device after a successful upload.
func WithReset(reset bool) Option {
	return func(c *Config) {
		c.Reset = reset
	}
}

// WithRegions restricts uploads to the given regions.
func WithRegions(regions ...Region) Option {
	return func(c *Config) {
		c.Regions = append([]Region(nil), regions...)
	}
}

// WithValidator sets the check run on the image before uploading.
func WithValidator(v Validator) Option {
	return func(c *Config) {
		c.Validator = v
	}
}

// WithNotifier adds a state change observer.
func WithNotifier(n StateNotifier) Option {
	return func(c *Config) {
		c.Notifiers = append(c.Notifiers, n)
	}
}

// WithProgress adds a progress observer.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Config) {
		c.Progress = append(c.Progress, fn)
	}
}
