package instance

import "os"

// GetID returns the process instance identifier used in boot logs. Platform
// variables win over the generic INSTANCE_ID; "local" is the fallback.
func GetID() string {
	for _, key := range []string{"DYNO", "K_REVISION", "INSTANCE_ID"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
