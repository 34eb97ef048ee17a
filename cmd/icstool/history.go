package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robert-malhotra/go-ics/ics"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or append history records",
	}

	var key string
	list := &cobra.Command{
		Use:   "list FILE",
		Short: "Print the history records of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ics.Open(args[0], ics.WithLogger(a.log))
			if err != nil {
				return err
			}
			defer f.Close()

			if key != "" {
				for _, v := range f.HistoryFor(key) {
					fmt.Fprintln(a.out, v)
				}
				return nil
			}
			for _, r := range f.History() {
				if r.Key == "" {
					fmt.Fprintln(a.out, r.Value)
				} else {
					fmt.Fprintf(a.out, "%s\t%s\n", r.Key, r.Value)
				}
			}
			return nil
		},
	}
	list.Flags().StringVarP(&key, "key", "k", "", "only print values of records with this key")

	add := &cobra.Command{
		Use:   "add FILE KEY VALUE",
		Short: "Append a history record, rewriting the header in place",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return addHistory(a, args[0], args[1], args[2])
		},
	}

	cmd.AddCommand(list, add)
	return cmd
}

func addHistory(a *app, path, key, value string) error {
	f, err := ics.OpenUpdate(path, ics.WithLogger(a.log))
	if err != nil {
		return err
	}
	if err := f.AddHistory(key, value); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.log.Info("added history record", zap.String("path", f.Path()), zap.String("key", key))
	return nil
}
