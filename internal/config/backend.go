package config

// ConfigBackend abstracts the platform-native settings store.
// On macOS it is UserDefaults under the com.expertdb.app domain (via
// the `defaults` CLI); elsewhere it is a JSON file in the XDG config
// directory. Keys are the dotted names from the specs table.
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	Delete(key string) error
}
