package codec

import "os"

func writeFile(path, data string) error {
	return os.WriteFile(path, []byte(data), 0644)
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}
