package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-records/config"
	"github.com/oksasatya/user-records/internal/client/form"
	"github.com/oksasatya/user-records/internal/client/store"
	"github.com/oksasatya/user-records/pkg/client"
	"github.com/oksasatya/user-records/pkg/helpers"
)

const usage = `usage: userctl <command> [flags]

commands:
  list                                      list all users, newest first
  create -name N -email E (-image F | -image-url U)
  update -id ID [-name N] [-email E] [-image F | -image-url U]
  delete -id ID
`

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := helpers.NewLogger(cfg.AppName+"-cli", cfg.Env)
	logger.SetOutput(os.Stderr)
	if os.Getenv("LOG_LEVEL") == "" {
		logger.SetLevel(logrus.WarnLevel)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	api := client.New(cfg.APIBaseURL, client.WithTimeout(cfg.ClientTimeout))
	st := store.New(api, logger)

	var err error
	ctx := context.Background()
	switch os.Args[1] {
	case "list":
		err = runList(ctx, st)
	case "create":
		err = runSave(ctx, st, os.Args[2:], false)
	case "update":
		err = runSave(ctx, st, os.Args[2:], true)
	case "delete":
		err = runDelete(ctx, st, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	st.Wait()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func runList(ctx context.Context, st *store.Store) error {
	users, err := st.FetchUsers(ctx).Wait()
	if err != nil {
		return err
	}
	fmt.Println(renderUsers(users))
	return nil
}

func runSave(ctx context.Context, st *store.Store, args []string, update bool) error {
	name := "create"
	if update {
		name = "update"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	id := fs.String("id", "", "user id (update only)")
	userName := fs.String("name", "", "user name")
	email := fs.String("email", "", "user email")
	imagePath := fs.String("image", "", "path to an image file to upload")
	imageURL := fs.String("image-url", "", "existing image URL")
	_ = fs.Parse(args)

	var existing *client.User
	if update {
		if *id == "" {
			return errors.New("-id is required")
		}
		users, err := st.FetchUsers(ctx).Wait()
		if err != nil {
			return err
		}
		for i := range users {
			if users[i].Key() == *id {
				existing = &users[i]
				break
			}
		}
		if existing == nil {
			return errors.New("User not found")
		}
	}

	var saved client.User
	c := form.New(st, existing, func(u client.User) { saved = u })

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["name"] || !update {
		c.Change(form.FieldName, *userName)
	}
	if set["email"] || !update {
		c.Change(form.FieldEmail, *email)
	}
	if set["image-url"] {
		c.Change(form.FieldImage, *imageURL)
	}
	if *imagePath != "" {
		f, err := loadImage(*imagePath)
		if err != nil {
			return err
		}
		if !c.SelectImage(f) {
			return errors.New(c.Visible(form.FieldImage))
		}
	}

	if _, err := c.Submit(ctx); err != nil {
		if errors.Is(err, form.ErrInvalid) {
			for _, field := range []string{form.FieldName, form.FieldEmail, form.FieldImage} {
				if msg := c.Visible(field); msg != "" {
					fmt.Fprintln(os.Stderr, errorStyle.Render(field+": "+msg))
				}
			}
			return err
		}
		return errors.New(c.Visible(form.FieldSubmit))
	}

	title := "User created"
	if update {
		title = "User updated"
	}
	fmt.Print(renderUser(title, saved))
	return nil
}

func runDelete(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "user id")
	_ = fs.Parse(args)
	if *id == "" {
		return errors.New("-id is required")
	}
	if _, err := st.DeleteUser(ctx, *id).Wait(); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("User deleted successfully"))
	return nil
}

func loadImage(path string) (*form.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &form.File{
		Name:        filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}
