package dual

// Config configures the neural network
type Config struct {
	Features    int `json:"features"`     // length of the encoded state
	Hidden      int `json:"hidden"`       // shared hidden layer width
	ActionSpace int `json:"action_space"` // policy head width
}

func DefaultConf(features, actionSpace int) Config {
	return Config{
		Features:    features,
		Hidden:      round(features + actionSpace),
		ActionSpace: actionSpace,
	}
}

func (conf Config) IsValid() bool {
	return conf.Features > 0 &&
		conf.Hidden > 0 &&
		conf.ActionSpace > 0
}

// round rounds a to the nearest power of two.
func round(a int) int {
	n := a - 1
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++

	lt := n / 2
	if (a - lt) < (n - a) {
		return lt
	}
	return n
}
