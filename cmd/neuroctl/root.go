package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"neurod/pkg/types"
)

// buildRootCmd constructs the Cobra command tree for the neuroctl client.
func buildRootCmd() *cobra.Command {
	defaultAddr := "http://127.0.0.1:8080"
	if v := os.Getenv("NEUROD_ADDR"); v != "" {
		defaultAddr = v
	}

	root := &cobra.Command{
		Use:           "neuroctl",
		Short:         "Client for a running neurod daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("addr", defaultAddr, "Base URL of the neurod daemon (defaults NEUROD_ADDR)")

	clientFor := func(cmd *cobra.Command) *Client {
		addr, _ := cmd.Flags().GetString("addr")
		return NewClient(addr)
	}

	endpointsCmd := &cobra.Command{
		Use:     "endpoints",
		Short:   "List available inference endpoints",
		Example: "  neuroctl endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := clientFor(cmd).Endpoints(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ep := range resp.Endpoints {
				fmt.Fprintf(out, "%-20s %-10s %s\n", ep.ID, ep.Format, ep.Path)
			}
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:     "status",
		Short:   "Show daemon status",
		Example: "  neuroctl status",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := clientFor(cmd).Status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state: %s", st.State)
			if st.Error != "" {
				fmt.Fprintf(out, " (%s)", st.Error)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "uptime: %s\n", (time.Duration(st.UptimeSeconds) * time.Second).String())
			fmt.Fprintf(out, "memory: %d/%d MB used (margin %d MB)\n", st.UsedMB, st.BudgetMB, st.MarginMB)
			fmt.Fprintf(out, "notes: %d  loads: %d  evictions: %d\n", st.Notes, st.LoadsTotal, st.EvictionsTotal)
			for _, inst := range st.Instances {
				fmt.Fprintf(out, "  %-20s %-9s mem=%dMB vocab=%d queue=%d/%d inflight=%d\n",
					inst.EndpointID, inst.State, inst.EstMemMB, inst.VocabSize,
					inst.QueueLen, inst.MaxQueueDepth, inst.Inflight)
			}
			return nil
		},
	}

	var storeSeed int64
	storeCmd := &cobra.Command{
		Use:     "store <text>",
		Short:   "Store a note with a simulated recording",
		Example: "  neuroctl store \"strong alpha burst while eyes closed\"",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := clientFor(cmd).Store(cmd.Context(), types.NoteCreateRequest{Text: args[0], Seed: storeSeed})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "stored %s\n", note.ID)
			fmt.Fprintf(out, "signal: band=%s peak=%.1fHz rms=%.3f p2p=%.3f\n",
				note.Signal.DominantBand, note.Signal.PeakFreqHz, note.Signal.RMS, note.Signal.PeakToPeak)
			return nil
		},
	}
	storeCmd.Flags().Int64Var(&storeSeed, "seed", 0, "Seed for the simulated recording (0 picks one)")

	var searchTopK int
	searchCmd := &cobra.Command{
		Use:     "search <query>",
		Short:   "Search stored notes by semantic similarity",
		Example: "  neuroctl search \"relaxation with eyes closed\" --top-k 3",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := clientFor(cmd).Search(cmd.Context(), types.SearchRequest{Query: args[0], TopK: searchTopK})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(resp.Matches) == 0 {
				fmt.Fprintln(out, "no matches")
				return nil
			}
			for _, m := range resp.Matches {
				fmt.Fprintf(out, "%.4f  %-12s %s\n", m.Score, m.Note.ID, m.Note.Text)
			}
			return nil
		},
	}
	searchCmd.Flags().IntVar(&searchTopK, "top-k", 0, "Number of matches to return (0 = server default)")

	genReq := types.GenerateRequest{}
	generateCmd := &cobra.Command{
		Use:     "generate <prompt>",
		Short:   "Stream a completion for the prompt",
		Example: "  neuroctl generate \"The alpha rhythm during rest\" --max-new-tokens 64 --temperature 0.7",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			genReq.Prompt = args[0]
			out := cmd.OutOrStdout()
			final, err := clientFor(cmd).Generate(cmd.Context(), genReq, func(tok string) {
				fmt.Fprint(out, tok)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintf(cmd.ErrOrStderr(), "finish=%s prompt_tokens=%d completion_tokens=%d\n",
				final.FinishReason, final.Usage.PromptTokens, final.Usage.CompletionTokens)
			return nil
		},
	}
	generateCmd.Flags().StringVar(&genReq.Endpoint, "endpoint", "", "Endpoint id (empty = server default)")
	generateCmd.Flags().IntVar(&genReq.MaxNewTokens, "max-new-tokens", 64, "Maximum number of new tokens")
	generateCmd.Flags().Float64Var(&genReq.Temperature, "temperature", 0, "Sampling temperature (0 = greedy)")
	generateCmd.Flags().Float64Var(&genReq.TopP, "top-p", 0.9, "Nucleus sampling probability")
	generateCmd.Flags().Float64Var(&genReq.RepetitionPenalty, "repetition-penalty", 0, "Repetition penalty (>1 discourages repeats)")
	generateCmd.Flags().BoolVar(&genReq.Greedy, "greedy", false, "Force greedy decoding")
	generateCmd.Flags().Int64Var(&genReq.Seed, "seed", 0, "Sampling seed (0 = server picks)")

	root.AddCommand(endpointsCmd, statusCmd, storeCmd, searchCmd, generateCmd)
	return root
}
