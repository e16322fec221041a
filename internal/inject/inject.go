// Package inject decrypts an environment's secrets and hands them to a
// child process, either by replacing the current process image or by
// emitting one of the supported export formats to stdout.
package inject

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"

	"github.com/google/uuid"

	"envkey/internal/cryptostore"
	"envkey/internal/document"
)

// Decrypted is a zeroizing snapshot of one environment's plaintext
// key/value map, plus the kind of each entry.
type Decrypted struct {
	values map[string]*cryptostore.Buffer
	kinds  map[string]document.SecretKind
}

// Zero clears every plaintext buffer.
func (d *Decrypted) Zero() {
	if d == nil {
		return
	}
	for _, buf := range d.values {
		buf.Zero()
	}
}

// Keys returns the decrypted key names in sorted order.
func (d *Decrypted) Keys() []string {
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decrypt opens every entry of env with identity.
func Decrypt(env *document.Environment, identity *cryptostore.Identity) (*Decrypted, error) {
	d := &Decrypted{
		values: make(map[string]*cryptostore.Buffer, len(env.Secrets)),
		kinds:  make(map[string]document.SecretKind, len(env.Secrets)),
	}
	for name, entry := range env.Secrets {
		buf, err := cryptostore.Decrypt(entry.Value, identity.Key())
		if err != nil {
			d.Zero()
			return nil, err
		}
		d.values[name] = buf
		d.kinds[name] = entry.Kind
	}
	return d, nil
}

// hasFileSecrets reports whether any entry is kind: file.
func (d *Decrypted) hasFileSecrets() bool {
	for _, k := range d.kinds {
		if k == document.KindFile {
			return true
		}
	}
	return false
}

// materializeFileSecrets writes every kind: file plaintext to its own file
// under dir (0700) and returns the env-var overrides mapping each such
// key to its file path instead of its content.
func (d *Decrypted) materializeFileSecrets(dir string) (map[string]string, error) {
	overrides := make(map[string]string)
	for name, kind := range d.kinds {
		if kind != document.KindFile {
			continue
		}
		path := dir + "/" + name
		if err := os.WriteFile(path, d.values[name].Bytes(), 0o600); err != nil {
			return nil, err
		}
		overrides[name] = path
	}
	return overrides, nil
}

// buildChildEnv merges the parent's environment with the decrypted map,
// decrypted values taking precedence on collision, and file-valued
// secrets replaced by their materialized path.
func (d *Decrypted) buildChildEnv(fileOverrides map[string]string) []string {
	merged := map[string]string{}
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				merged[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	for name, buf := range d.values {
		if override, ok := fileOverrides[name]; ok {
			merged[name] = override
			continue
		}
		merged[name] = buf.String()
	}
	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	return out
}

// Run decrypts env and executes argv with the augmented environment. When
// no kind: file secret is present and the platform supports it, the
// current process image is replaced (syscall.Exec) so no residual parent
// memory holds plaintexts after handoff. Otherwise it spawns argv, waits,
// and propagates its exit status, zeroizing plaintexts once the child
// exits.
func Run(env *document.Environment, identity *cryptostore.Identity, argv []string) (int, error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("run requires a command")
	}
	d, err := Decrypt(env, identity)
	if err != nil {
		return 0, err
	}
	defer d.Zero()

	if d.hasFileSecrets() {
		return runWithFileSecrets(d, argv)
	}
	return runReplacingProcess(d, argv)
}

// runWithFileSecrets disallows process replacement: a temp directory must
// be cleaned up after the child exits, which only a spawn-and-wait caller
// can guarantee (§4.6's documented restriction).
func runWithFileSecrets(d *Decrypted, argv []string) (int, error) {
	dir, err := os.MkdirTemp("", "envkey-"+uuid.NewString())
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(dir)
	if err := os.Chmod(dir, 0o700); err != nil {
		return 0, err
	}

	overrides, err := d.materializeFileSecrets(dir)
	if err != nil {
		return 0, err
	}
	return spawnAndWait(d.buildChildEnv(overrides), argv)
}

func spawnAndWait(childEnv []string, argv []string) (int, error) {
	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return 0, &ChildSpawnError{Command: argv[0], Err: err}
	}
	cmd := exec.Command(bin, argv[1:]...)
	cmd.Env = childEnv
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return 0, &ChildSpawnError{Command: argv[0], Err: err}
	}
	return 0, nil
}

func runReplacingProcess(d *Decrypted, argv []string) (int, error) {
	childEnv := d.buildChildEnv(nil)
	if runtime.GOOS == "windows" {
		return spawnAndWait(childEnv, argv)
	}
	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return 0, &ChildSpawnError{Command: argv[0], Err: err}
	}
	d.Zero()
	if err := execImage(bin, argv, childEnv); err != nil {
		return 0, &ChildSpawnError{Command: argv[0], Err: err}
	}
	return 0, nil // unreachable on success: execImage replaces the process
}
