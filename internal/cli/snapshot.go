package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dukerupert/fittrack/internal/backup"
	"github.com/dukerupert/fittrack/internal/store"
)

var snapshotCmd = GroupCommand{
	Use:   "snapshot",
	Short: "Encrypted database snapshots in S3-compatible storage",
	Subcommands: []*cobra.Command{
		snapshotCreateCmd,
		snapshotListCmd,
		snapshotRestoreCmd,
	},
}.Build()

var passphraseFlag = StringFlag{Name: "passphrase", Usage: "encryption passphrase (default: $FITTRACK_SNAPSHOT_PASSPHRASE)"}

var snapshotCreateCmd = LeafCommand{
	Use:      "create",
	Short:    "Take a snapshot now",
	Args:     cobra.NoArgs,
	StrFlags: []StringFlag{passphraseFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(a *app, m *backup.Manager) error {
			return runSnapshotCreate(cmd, m, passphrase(cmd, a))
		})
	},
}.Build()

var snapshotListCmd = LeafCommand{
	Use:      "list",
	Short:    "List recent snapshots",
	Args:     cobra.NoArgs,
	StrFlags: []StringFlag{{Name: "limit", Usage: "maximum number of snapshots", Default: "20"}},
	RunE: func(cmd *cobra.Command, args []string) error {
		limitStr, _ := cmd.Flags().GetString("limit")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return fmt.Errorf("invalid limit %q", limitStr)
		}
		return withManager(cmd, func(a *app, m *backup.Manager) error {
			return runSnapshotList(cmd, m, limit)
		})
	},
}.Build()

var snapshotRestoreCmd = LeafCommand{
	Use:      "restore <id> <dest.db>",
	Short:    "Download and decrypt a snapshot to a new database file",
	Long:     "Download, decrypt and integrity-check a snapshot, writing it to dest.db. The live database is not touched.",
	Args:     cobra.ExactArgs(2),
	StrFlags: []StringFlag{passphraseFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(a *app, m *backup.Manager) error {
			return runSnapshotRestore(cmd, m, args[0], passphrase(cmd, a), args[1])
		})
	},
}.Build()

func withManager(cmd *cobra.Command, fn func(*app, *backup.Manager) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	m := backup.NewManager(a.cfg.Snapshot, a.db, store.NewSnapshotStore(a.db), a.logger, nil)
	return fn(a, m)
}

func passphrase(cmd *cobra.Command, a *app) string {
	if p, _ := cmd.Flags().GetString("passphrase"); p != "" {
		return p
	}
	return a.cfg.Snapshot.Passphrase
}

func runSnapshotCreate(cmd *cobra.Command, m *backup.Manager, passphrase string) error {
	snap, err := m.RunNow(cmdContext(cmd), passphrase)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s uploaded to %s\n", Primary(snap.ID), snap.S3Key)
	return nil
}

func runSnapshotList(cmd *cobra.Command, m *backup.Manager, limit int) error {
	snaps, err := m.List(cmdContext(cmd), limit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), Silent("No snapshots yet."))
		return nil
	}
	for _, s := range snaps {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderSnapshot(s))
	}
	return nil
}

func runSnapshotRestore(cmd *cobra.Command, m *backup.Manager, id, passphrase, dst string) error {
	if err := m.Restore(cmdContext(cmd), id, passphrase, dst); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Restored %s to %s\n", Primary(id), dst)
	return nil
}
