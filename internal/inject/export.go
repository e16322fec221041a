package inject

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"envkey/internal/cryptostore"
)

// Format is an export output format.
type Format string

const (
	FormatEnv       Format = "env"
	FormatJSON      Format = "json"
	FormatDocker    Format = "docker"
	FormatK8sSecret Format = "k8s-secret"
)

// Export renders the decrypted values in the requested format. secretName
// is used as the Kubernetes Secret's metadata.name for FormatK8sSecret.
// values is typically the output of secretsengine.Engine.List; the caller
// owns zeroing it (secretsengine.ZeroAll) once Export returns.
func Export(values map[string]*cryptostore.Buffer, format Format, secretName string) (string, error) {
	keys := sortedKeys(values)
	switch format {
	case FormatEnv:
		return exportEnv(values, keys), nil
	case FormatJSON:
		return exportJSON(values)
	case FormatDocker:
		return exportDocker(values, keys), nil
	case FormatK8sSecret:
		return exportK8sSecret(values, keys, secretName)
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
}

func sortedKeys(values map[string]*cryptostore.Buffer) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func exportEnv(values map[string]*cryptostore.Buffer, keys []string) string {
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, shellQuote(values[k].String()))
	}
	return b.String()
}

// shellQuote wraps v in single quotes, escaping embedded single quotes the
// POSIX-shell-safe way: close the quote, emit an escaped quote, reopen it.
func shellQuote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}

func exportJSON(values map[string]*cryptostore.Buffer) (string, error) {
	out := make(map[string]string, len(values))
	for k, buf := range values {
		out[k] = buf.String()
	}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(encoded) + "\n", nil
}

func exportDocker(values map[string]*cryptostore.Buffer, keys []string) string {
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, values[k].String())
	}
	return b.String()
}

func exportK8sSecret(values map[string]*cryptostore.Buffer, keys []string, name string) (string, error) {
	if name == "" {
		name = "envkey-secrets"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "apiVersion: v1\nkind: Secret\nmetadata:\n  name: %s\ntype: Opaque\ndata:\n", name)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %s\n", k, base64.StdEncoding.EncodeToString(values[k].Bytes()))
	}
	return b.String(), nil
}
