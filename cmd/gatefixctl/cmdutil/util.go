// Package cmdutil holds gatefixctl's global flag state, grounded on the
// teacher's cmd/dfsctl/cmdutil package.
package cmdutil

import (
	"encoding/json"
	"io"

	"github.com/coriolisfix/gatefix/pkg/apiclient"
)

// GlobalFlags are the persistent flags every subcommand reads.
type GlobalFlags struct {
	ServerURL string
	Output    string
}

// Flags holds the values rootCmd's PersistentPreRun syncs from cobra.
var Flags GlobalFlags

// GetClient builds an apiclient.Client against the configured server URL.
func GetClient() *apiclient.Client {
	return apiclient.New(Flags.ServerURL)
}

// PrintJSON writes v to w as indented JSON, for -o json output.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

