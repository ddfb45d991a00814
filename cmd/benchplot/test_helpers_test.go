package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// executeCommand executes a cobra command and returns its output. A call to
// exit with a non-zero code surfaces as an "exit-N" error.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	resetFlags(root)
	viper.Reset()
	cfgFile = ""

	// Mock exit
	oldExit := exit
	exit = func(code int) {
		if code != 0 {
			panic(fmt.Sprintf("exit-%d", code))
		}
	}
	defer func() { exit = oldExit }()

	b := new(bytes.Buffer)
	defer func() {
		if r := recover(); r != nil {
			if s, ok := r.(string); ok && strings.HasPrefix(s, "exit-") {
				output, err = b.String(), fmt.Errorf("%s", s)
				return
			}
			panic(r) // Re-panic actual panics
		}
	}()

	root.SetArgs(args)
	root.SetOut(b)
	root.SetErr(b)
	root.SetIn(bytes.NewBufferString(""))
	err = root.Execute()
	return b.String(), err
}

// resetFlags resets all flags to their default values.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// sampleReport is a small two-operator report with every alignment paired.
const sampleReport = `add,scalar,1024,0,1,10,11,12,13,14
add,scalar,1024,0,0,20,21,22,23,24
add,scalar,4096,0,1,40,41,42,43,44
add,scalar,4096,0,0,60,61,62,63,64
add,simd,1024,0,1,5,6,7,8,9
add,simd,1024,0,0,7,8,9,10,11
mul,scalar,1024,2,1,30,31,32,33,34
mul,scalar,1024,2,0,35,36,37,38,39
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
