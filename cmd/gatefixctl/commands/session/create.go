package session

import (
	"fmt"

	"github.com/coriolisfix/gatefix/cmd/gatefixctl/cmdutil"
	"github.com/coriolisfix/gatefix/pkg/apiclient"
	"github.com/spf13/cobra"
)

var (
	protocol     string
	senderCompID string
	targetCompID string
	sessionIDStr string
	firmID       string
	addr         string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Initiate a new outbound FIX or iLink3 session",
	Long: `Initiate a new outbound session against the given address, returning a
reply id to poll with "gatefixctl session reply <id>".

Examples:
  gatefixctl session create --protocol FIX --sender-comp-id CLIENT --target-comp-id BROKER --addr 10.0.0.1:9001
  gatefixctl session create --protocol ILINK3 --session-id-str FOO --firm-id 12345 --addr 10.0.0.2:9002`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&protocol, "protocol", "FIX", "Session protocol (FIX|ILINK3)")
	createCmd.Flags().StringVar(&senderCompID, "sender-comp-id", "", "FIX SenderCompID")
	createCmd.Flags().StringVar(&targetCompID, "target-comp-id", "", "FIX TargetCompID")
	createCmd.Flags().StringVar(&sessionIDStr, "session-id-str", "", "iLink3 SessionID")
	createCmd.Flags().StringVar(&firmID, "firm-id", "", "iLink3 FirmID")
	createCmd.Flags().StringVar(&addr, "addr", "", "Counterparty address (host:port)")
	_ = createCmd.MarkFlagRequired("addr")
}

func runCreate(cmd *cobra.Command, args []string) error {
	accepted, err := cmdutil.GetClient().CreateSession(apiclient.CreateSessionRequest{
		Protocol:     protocol,
		SenderCompID: senderCompID,
		TargetCompID: targetCompID,
		SessionIDStr: sessionIDStr,
		FirmID:       firmID,
		Addr:         addr,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), accepted.ReplyID)
	return nil
}
