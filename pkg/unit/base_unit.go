package unit

// BaseUnit provides common configuration accessors for unit implementations.
// Embed this in custom units alongside an Execute method.
type BaseUnit struct {
	descriptor *Descriptor
}

// NewBaseUnit creates a base unit carrying the given descriptor.
func NewBaseUnit(descriptor *Descriptor) BaseUnit {
	return BaseUnit{descriptor: descriptor}
}

// Descriptor returns the unit's declared metadata.
func (u *BaseUnit) Descriptor() *Descriptor {
	return u.descriptor
}

// GetString returns a config value as string.
func GetString(config map[string]interface{}, key, defaultVal string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return defaultVal
}

// GetBool returns a config value as bool.
func GetBool(config map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := config[key].(bool); ok {
		return v
	}
	return defaultVal
}

// GetInt returns a config value as int, accepting the numeric types JSON
// decoding produces.
func GetInt(config map[string]interface{}, key string, defaultVal int) int {
	switch v := config[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return defaultVal
}

// GetFloat returns a config value as float64.
func GetFloat(config map[string]interface{}, key string, defaultVal float64) float64 {
	switch v := config[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return defaultVal
}

// GetStringSlice returns a config value as a string slice.
func GetStringSlice(config map[string]interface{}, key string) []string {
	raw, ok := config[key].([]interface{})
	if !ok {
		if s, ok := config[key].([]string); ok {
			return s
		}
		return nil
	}
	result := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

// GetMap returns a config value as a nested map.
func GetMap(config map[string]interface{}, key string) map[string]interface{} {
	if v, ok := config[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}
