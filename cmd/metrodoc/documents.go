package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"metrodoc/internal/client"
	"metrodoc/internal/model"
	"metrodoc/internal/query"
)

func newDocumentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "Browse and manage documents",
	}
	cmd.AddCommand(
		newDocumentsListCmd(a),
		newDocumentsShowCmd(a),
		newDocumentsSummaryCmd(a),
		newDocumentsUploadCmd(a),
		newDocumentsUpdateCmd(a),
		newDocumentsDeleteCmd(a),
		newDocumentsDownloadCmd(a),
	)
	return cmd
}

func newDocumentsListCmd(a *app) *cobra.Command {
	var (
		text, department, sort string
		remote                 bool
		limit, offset          int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents matching a search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, ok := query.ParseSort(sort)
			if !ok {
				return fmt.Errorf("unknown sort %q: use latest, oldest or title", sort)
			}
			ws, err := a.workspace(cmd)
			if err != nil {
				return err
			}
			view := client.ViewState{Text: text, Department: department, Sort: key}

			var docs []model.Document
			if remote {
				docs, err = ws.SearchRemote(cmd.Context(), view.Request())
				if err != nil {
					return err
				}
			} else {
				if err := ws.Refresh(cmd.Context()); err != nil {
					return err
				}
				ws.SetView(view)
				docs = ws.Documents()
			}
			return printDocuments(cmd.OutOrStdout(), query.Page(docs, offset, limit))
		},
	}
	cmd.Flags().StringVarP(&text, "query", "q", "", "Free text matched against title, description and tags")
	cmd.Flags().StringVar(&department, "department", query.AllDepartments, "Department filter")
	cmd.Flags().StringVar(&sort, "sort", string(query.SortLatest), "latest, oldest or title")
	cmd.Flags().BoolVar(&remote, "remote", false, "Search on the server instead of locally")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many documents (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many documents")
	return cmd
}

func printDocuments(w io.Writer, docs []model.Document) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDEPARTMENT\tPRIORITY\tTYPE\tUPLOADED")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.Title, d.Department, d.Priority, d.FileType, d.UploadDate.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func newDocumentsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace(cmd)
			if err != nil {
				return err
			}
			doc, err := ws.OpenDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), doc)
		},
	}
}

func newDocumentsSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary ID",
		Short: "Print the generated summary of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace(cmd)
			if err != nil {
				return err
			}
			s, err := ws.Summary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, s.Summary)
			for _, p := range s.KeyPoints {
				fmt.Fprintf(out, "  - %s\n", p)
			}
			return nil
		},
	}
}

type metadataFlags struct {
	title, description, department, priority string
	tags                                     []string
}

func (m *metadataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&m.title, "title", "", "Document title")
	cmd.Flags().StringVar(&m.description, "description", "", "Document description")
	cmd.Flags().StringVar(&m.department, "department", "", "Owning department")
	cmd.Flags().StringVar(&m.priority, "priority", "", "none, low, medium or high")
	cmd.Flags().StringSliceVar(&m.tags, "tags", nil, "Comma separated tags")
}

func (m *metadataFlags) metadata() model.Metadata {
	return model.Metadata{
		Title:       m.title,
		Description: m.description,
		Department:  m.department,
		Priority:    model.Priority(strings.ToLower(m.priority)),
		Tags:        m.tags,
	}
}

// patch sets only the fields whose flags were given.
func (m *metadataFlags) patch(cmd *cobra.Command) model.DocumentPatch {
	var p model.DocumentPatch
	f := cmd.Flags()
	if f.Changed("title") {
		p.Title = &m.title
	}
	if f.Changed("description") {
		p.Description = &m.description
	}
	if f.Changed("department") {
		p.Department = &m.department
	}
	if f.Changed("priority") {
		pr := model.Priority(strings.ToLower(m.priority))
		p.Priority = &pr
	}
	if f.Changed("tags") {
		p.Tags = &m.tags
	}
	return p
}

func newDocumentsUploadCmd(a *app) *cobra.Command {
	var meta metadataFlags
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a file with its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ws, err := a.workspace(cmd)
			if err != nil {
				return err
			}
			doc, err := ws.Upload(cmd.Context(), f, filepath.Base(args[0]), meta.metadata())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%s, %s)\n", doc.ID, doc.FileType, units.HumanSize(float64(doc.FileSize)))
			return nil
		},
	}
	meta.register(cmd)
	return cmd
}

func newDocumentsUpdateCmd(a *app) *cobra.Command {
	var meta metadataFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change document metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := meta.patch(cmd)
			if patch.IsEmpty() {
				return errors.New("nothing to update: pass --title, --description, --department, --priority or --tags")
			}
			ws, err := a.workspace(cmd)
			if err != nil {
				return err
			}
			if err := ws.Refresh(cmd.Context()); err != nil {
				return err
			}
			doc, err := ws.UpdateDocument(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), doc)
		},
	}
	meta.register(cmd)
	return cmd
}

func newDocumentsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a document and its stored file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace(cmd)
			if err != nil {
				return err
			}
			if err := ws.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := ws.DeleteDocument(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newDocumentsDownloadCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "download ID",
		Short: "Download the original file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace(cmd)
			if err != nil {
				return err
			}
			if out == "-" {
				_, err := ws.Download(cmd.Context(), args[0], cmd.OutOrStdout())
				return err
			}
			if out == "" {
				doc, err := ws.OpenDocument(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out = doc.FileName
				if out == "" {
					out = args[0]
				}
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			n, err := ws.Download(cmd.Context(), args[0], f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(out)
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "saved %s (%s)\n", out, units.HumanSize(float64(n)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Destination path, - for stdout (default: the original file name)")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
