package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"imgtree/internal/domain/models"

	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the folder tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}

		if format == "" || format == "text" {
			out := ws.Render()
			if out == "" {
				fmt.Println("No folders.")
				return nil
			}
			fmt.Println(out)
			return nil
		}

		body, err := ws.Export(format)
		if err != nil {
			return err
		}
		os.Stdout.Write(body)
		if !strings.HasSuffix(string(body), "\n") {
			fmt.Println()
		}
		return nil
	},
}

// folder command
var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders",
}

var folderAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, _ := cmd.Flags().GetString("parent")

		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}

		f, err := ws.AddFolder(cmd.Context(), parseParent(parent), args[0])
		if err != nil {
			return fmt.Errorf("creating folder: %w", err)
		}
		fmt.Printf("Created folder %s (%s)\n", f.Name, f.ID)
		return nil
	},
}

var folderRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a folder and everything under it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}

		removed, err := ws.DeleteFolder(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("deleting folder: %w", err)
		}
		fmt.Printf("Removed %d folder(s): %s\n", len(removed), strings.Join(removed, ", "))
		return nil
	},
}

var folderRenameCmd = &cobra.Command{
	Use:   "rename ID NAME",
	Short: "Rename a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}

		name := args[1]
		f, err := ws.UpdateFolder(cmd.Context(), args[0], models.FolderPatch{Name: &name})
		if err != nil {
			return fmt.Errorf("renaming folder: %w", err)
		}
		fmt.Printf("Renamed %s to %s\n", f.ID, f.Name)
		return nil
	},
}

var folderConfigCmd = &cobra.Command{
	Use:   "config ID",
	Short: "Toggle upload and sync on a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch models.FolderPatch
		if cmd.Flags().Changed("allow-upload") {
			v, _ := cmd.Flags().GetBool("allow-upload")
			patch.AllowUpload = &v
		}
		if cmd.Flags().Changed("allow-sync") {
			v, _ := cmd.Flags().GetBool("allow-sync")
			patch.AllowSync = &v
		}
		if patch.IsEmpty() {
			return fmt.Errorf("nothing to change; pass --allow-upload and/or --allow-sync")
		}

		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}

		f, err := ws.UpdateFolder(cmd.Context(), args[0], patch)
		if err != nil {
			return fmt.Errorf("updating folder: %w", err)
		}
		fmt.Printf("%s: upload=%t sync=%t\n", f.Name, f.AllowUpload, f.AllowSync)
		return nil
	},
}

var folderMvCmd = &cobra.Command{
	Use:   "mv ID",
	Short: "Move a folder under --parent (omit it for the top level)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parentArg, _ := cmd.Flags().GetString("parent")

		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}

		f, err := ws.MoveFolder(cmd.Context(), args[0], parseParent(parentArg))
		if err != nil {
			return fmt.Errorf("moving folder: %w", err)
		}
		parent := "root"
		if f.ParentID != nil {
			parent = *f.ParentID
		}
		fmt.Printf("Moved %s under %s\n", f.Name, parent)
		return nil
	},
}

// image command
var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage images",
}

var imageLsCmd = &cobra.Command{
	Use:   "ls FOLDER",
	Short: "List the images in a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}

		images, err := ws.Images(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(images) == 0 {
			fmt.Println("No images.")
			return nil
		}
		for _, img := range images {
			fmt.Printf("%-8s %-32s %s\n", img.ID, img.Name, img.URL)
		}
		return nil
	},
}

var imageUploadCmd = &cobra.Command{
	Use:   "upload FOLDER FILE...",
	Short: "Upload image files into a folder",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := make([]models.UploadFile, 0, len(args)-1)
		for _, path := range args[1:] {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			files = append(files, models.UploadFile{
				Name:        filepath.Base(path),
				ContentType: mime.TypeByExtension(filepath.Ext(path)),
				Size:        info.Size(),
				Content:     f,
			})
		}

		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}

		images, err := ws.UploadImages(cmd.Context(), args[0], files)
		for _, img := range images {
			fmt.Printf("Uploaded %s (%s)\n", img.Name, img.ID)
		}
		if err != nil {
			return fmt.Errorf("upload: %w", err)
		}
		return nil
	},
}

var imageRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}

		if err := ws.DeleteImage(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("deleting image: %w", err)
		}
		fmt.Printf("Deleted image %s\n", args[0])
		return nil
	},
}

// share command
var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Manage who a folder is shared with",
}

var shareLsCmd = &cobra.Command{
	Use:   "ls FOLDER",
	Short: "List a folder's permissions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}

		perms, err := ws.Permissions(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printPermissions(perms)
		return nil
	},
}

var shareAddCmd = &cobra.Command{
	Use:   "add FOLDER EMAIL",
	Short: "Grant an email access to a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetStringSlice("grant")
		grants := make([]models.Grant, len(raw))
		for i, g := range raw {
			grants[i] = models.Grant(strings.ToLower(strings.TrimSpace(g)))
		}

		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}

		perms, err := ws.Share(cmd.Context(), args[0], args[1], grants)
		if err != nil {
			return fmt.Errorf("sharing folder: %w", err)
		}
		printPermissions(perms)
		return nil
	},
}

var shareRmCmd = &cobra.Command{
	Use:   "rm FOLDER EMAIL",
	Short: "Revoke an email's access to a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}

		perms, err := ws.Unshare(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("unsharing folder: %w", err)
		}
		printPermissions(perms)
		return nil
	},
}

func printPermissions(perms []models.Permission) {
	if len(perms) == 0 {
		fmt.Println("Not shared.")
		return
	}
	for _, p := range perms {
		names := make([]string, len(p.Grants))
		for i, g := range p.Grants {
			names[i] = string(g)
		}
		fmt.Printf("%-32s %s\n", p.Email, strings.Join(names, ","))
	}
}

// drive command
var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Import images from Google Drive",
}

var driveLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List image files in Drive",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		limit, _ := cmd.Flags().GetInt("limit")

		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}

		files, err := ws.PickerImages(cmd.Context(), token, limit)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Printf("%-36s %-32s %s\n", f.ID, f.Name, f.MimeType)
		}
		return nil
	},
}

var driveImportCmd = &cobra.Command{
	Use:   "import FOLDER [FILE_ID...]",
	Short: "Copy Drive images into a folder (all listed images when no ids are given)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		limit, _ := cmd.Flags().GetInt("limit")

		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}

		listed, err := ws.PickerImages(cmd.Context(), token, limit)
		if err != nil {
			return err
		}

		picked := listed
		if ids := args[1:]; len(ids) > 0 {
			byID := make(map[string]models.PickedFile, len(listed))
			for _, f := range listed {
				byID[f.ID] = f
			}
			picked = make([]models.PickedFile, 0, len(ids))
			for _, id := range ids {
				f, ok := byID[id]
				if !ok {
					f = models.PickedFile{ID: id, Name: id}
				}
				picked = append(picked, f)
			}
		}

		result, err := ws.ImportPicked(cmd.Context(), args[0], token, picked)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		for _, img := range result.Imported {
			fmt.Printf("Imported %s (%s)\n", img.Name, img.ID)
		}
		for _, name := range result.Skipped {
			fmt.Printf("Skipped %s (not an image)\n", name)
		}
		for _, f := range result.Failed {
			fmt.Printf("Failed %s: %s\n", f.Name, f.Error)
		}
		return nil
	},
}

func addWorkspaceCommands() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().StringP("format", "f", "text", "Output format: text, json or yaml")

	rootCmd.AddCommand(folderCmd)
	folderCmd.AddCommand(folderAddCmd)
	folderAddCmd.Flags().String("parent", "", "Parent folder id (default root)")
	folderCmd.AddCommand(folderRmCmd)
	folderCmd.AddCommand(folderRenameCmd)
	folderCmd.AddCommand(folderConfigCmd)
	folderConfigCmd.Flags().Bool("allow-upload", true, "Allow uploads into the folder")
	folderConfigCmd.Flags().Bool("allow-sync", true, "Allow Drive imports into the folder")
	folderCmd.AddCommand(folderMvCmd)
	folderMvCmd.Flags().String("parent", "", "New parent folder id (default root)")

	rootCmd.AddCommand(imageCmd)
	imageCmd.AddCommand(imageLsCmd)
	imageCmd.AddCommand(imageUploadCmd)
	imageCmd.AddCommand(imageRmCmd)

	rootCmd.AddCommand(shareCmd)
	shareCmd.AddCommand(shareLsCmd)
	shareCmd.AddCommand(shareAddCmd)
	shareAddCmd.Flags().StringSliceP("grant", "g", []string{"read"}, "Grants: read, write, delete")
	shareCmd.AddCommand(shareRmCmd)

	rootCmd.AddCommand(driveCmd)
	driveCmd.PersistentFlags().String("token", os.Getenv("DRIVE_TOKEN"), "Google OAuth access token (or DRIVE_TOKEN)")
	driveCmd.PersistentFlags().IntP("limit", "n", 20, "Maximum number of Drive files to list")
	driveCmd.AddCommand(driveLsCmd)
	driveCmd.AddCommand(driveImportCmd)
}
