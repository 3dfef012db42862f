package execution

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
)

// EnvFile is read from the owning root and merged into the test environment
const EnvFile = ".env"

// rootEnv reads the root's .env file. A missing file yields no variables.
func rootEnv(rootPath string) (map[string]string, error) {
	vars, err := godotenv.Read(filepath.Join(rootPath, EnvFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", EnvFile, err)
	}
	return vars, nil
}

// pairs returns vars as sorted KEY=VALUE entries
func pairs(vars map[string]string) []string {
	out := make([]string, 0, len(vars))
	for k, v := range vars {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}
