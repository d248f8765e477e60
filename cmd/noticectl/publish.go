package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	publishTitle   string
	publishContent string
	publishFile    string
	publishYes     bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a new announcement",
	Long: `Publish a new announcement. Content may contain the limited HTML the
sidebar renders (links, images, emphasis, lists, font colors).

Content is taken from --content, from --file (use - for stdin), or
prompted for when neither is given.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVarP(&publishTitle, "title", "t", "", "announcement title")
	publishCmd.Flags().StringVarP(&publishContent, "content", "c", "", "announcement content")
	publishCmd.Flags().StringVarP(&publishFile, "file", "f", "", "read content from file (- for stdin)")
	publishCmd.Flags().BoolVarP(&publishYes, "yes", "y", false, "publish without confirmation")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	title := publishTitle
	content, err := readContent(publishContent, publishFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	if title == "" && content == "" {
		if title, err = (&promptui.Prompt{Label: "Title"}).Run(); err != nil {
			return fmt.Errorf("title prompt: %w", err)
		}
		if content, err = (&promptui.Prompt{Label: "Content"}).Run(); err != nil {
			return fmt.Errorf("content prompt: %w", err)
		}
	}
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" && content == "" {
		return errors.New("title and content are both empty")
	}

	if !publishYes {
		confirm := promptui.Prompt{Label: fmt.Sprintf("Publish %q", title), IsConfirm: true}
		if _, err := confirm.Run(); err != nil {
			fprintf(cmd.OutOrStdout(), "Cancelled.\n")
			return nil
		}
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	token, err := s.token(ctx)
	if err != nil {
		return err
	}

	item, err := s.admin.Publish(ctx, token, title, content)
	if err != nil {
		return s.checkAuth(ctx, err)
	}
	if item != nil {
		fprintf(cmd.OutOrStdout(), "Published %s.\n", item.ID)
	} else {
		fprintf(cmd.OutOrStdout(), "Published.\n")
	}
	return nil
}

// readContent picks the announcement body from the flag or the file.
func readContent(flag, file string, stdin io.Reader) (string, error) {
	if flag != "" && file != "" {
		return "", errors.New("use either --content or --file, not both")
	}
	switch file {
	case "":
		return flag, nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	}
}
