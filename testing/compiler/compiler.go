package compiler

import (
	"context"
	"os"

	"github.com/coreloop/cx/releases/compiler"
)

type Compiler struct {
	compiler *compiler.Parallel
}

func New() *Compiler {
	tempDir, err := os.MkdirTemp("", "acceptance-tests")
	if err != nil {
		panic(err)
	}

	return &Compiler{
		compiler: compiler.New(compiler.Config{
			BaseDir:     tempDir,
			LDFlags:     "-w -s",
			Parallelism: 1,
		}),
	}
}

func (c *Compiler) Dir() string {
	return c.compiler.Dir()
}

func (c *Compiler) Cleanup() {
	_ = os.RemoveAll(c.compiler.Dir())
}

// Compile a binary for testing. The work's Target is the module to compile
// in, Source the path of the main package relative to Target.
func (c *Compiler) Compile(ctx context.Context, work Work) (string, error) {
	var binary string
	work.Result = &binary
	if err := c.compiler.Run(ctx, work); err != nil {
		return "", err
	}
	return binary, nil
}
