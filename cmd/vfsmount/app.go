// Command vfsmount lists, creates, and removes ADLS Gen2 mounts in a mount table persisted on this machine.
//
//	vfsmount --scope kv-databricks mount --account 0xxx0storageaccountadls --mount raw:/mnt/raw --mount datalake:/mnt/datalake
//	vfsmount mounts
//	vfsmount ls /mnt/raw/deep_dive
//	vfsmount unmount /mnt/raw
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/c2fo/vfsmount"
	"github.com/c2fo/vfsmount/auth"
	"github.com/c2fo/vfsmount/host"
	"github.com/c2fo/vfsmount/host/bolt"
	"github.com/c2fo/vfsmount/mount"
	"github.com/c2fo/vfsmount/options"
	"github.com/c2fo/vfsmount/secretstore/env"
	"github.com/c2fo/vfsmount/secretstore/keyvault"
)

// runner holds what the commands share; tests replace clientFactory with a mock
type runner struct {
	stdout        io.Writer
	clientFactory host.ClientFactory
	logger        *logrus.Logger
}

func newApp(r *runner) *cli.App {
	if r.logger == nil {
		r.logger = logrus.New()
	}

	app := cli.NewApp()
	app.Name = "vfsmount"
	app.Usage = "Mounts Azure Data Lake Storage Gen2 containers using OAuth client credentials from a secret scope"
	app.Writer = r.stdout
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "db",
			Usage:  "mount table database path",
			EnvVar: bolt.EnvDBPath,
			Value:  bolt.DefaultPath,
		},
		cli.StringFlag{
			Name:   "scope",
			Usage:  "secret scope holding tenant-id, application-id and secret (default: first scope)",
			EnvVar: "VFSMOUNT_SCOPE",
		},
		cli.StringFlag{
			Name:   "keyvault-scopes",
			Usage:  "comma separated name=vaultURL pairs; when empty secrets are read from VFSMOUNT_SECRET_* variables",
			EnvVar: "VFSMOUNT_KEYVAULT_SCOPES",
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "log level (debug, info, warn, error)",
			EnvVar: "VFSMOUNT_LOG_LEVEL",
			Value:  "warn",
		},
		cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable colored output",
		},
	}
	app.Before = func(c *cli.Context) error {
		if lvl := c.GlobalString("log-level"); lvl != "" {
			level, err := logrus.ParseLevel(lvl)
			if err != nil {
				return err
			}
			r.logger.SetLevel(level)
		}
		if c.GlobalBool("no-color") {
			color.NoColor = true
		}
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:   "mounts",
			Usage:  "list active mounts",
			Action: r.mounts,
		},
		{
			Name:      "ls",
			Usage:     "list the entries beneath a mounted path",
			ArgsUsage: "PATH",
			Action:    r.ls,
		},
		{
			Name:  "mount",
			Usage: "mount containers of a storage account, replacing any existing mount at the same path",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:   "account",
					Usage:  "storage account name",
					EnvVar: "VFSMOUNT_STORAGE_ACCOUNT",
				},
				cli.StringSliceFlag{
					Name:  "mount",
					Usage: "container:path, may be repeated",
				},
				cli.BoolFlag{
					Name:  "no-verify",
					Usage: "skip listing each mount after it is created",
				},
			},
			Action: r.mount,
		},
		{
			Name:      "unmount",
			Usage:     "unmount paths; paths that are not mounted are ignored",
			ArgsUsage: "PATH...",
			Action:    r.unmount,
		},
	}
	return app
}

func (r *runner) secretStore(c *cli.Context) (vfsmount.SecretStore, error) {
	if raw := c.GlobalString("keyvault-scopes"); raw != "" {
		scopes, err := keyvault.ParseScopes(raw)
		if err != nil {
			return nil, err
		}
		return keyvault.NewStore(keyvault.WithScopes(scopes...)), nil
	}
	return env.NewStore(env.NewOptions()), nil
}

// openHost opens the mount table.  Mounts created by other invocations are listed with the secret resolved again
// from the secret store.
func (r *runner) openHost(c *cli.Context) (*bolt.Host, error) {
	o := bolt.NewOptions()
	o.Path = c.GlobalString("db")

	opts := []options.Option[bolt.Host]{bolt.WithLogger(r.logger), bolt.WithSecretFunc(r.secretFunc(c))}
	if r.clientFactory != nil {
		opts = append(opts, bolt.WithClientFactory(r.clientFactory))
	}
	return bolt.Open(o, opts...)
}

func (r *runner) secretFunc(c *cli.Context) bolt.SecretFunc {
	return func(ctx context.Context, rec bolt.Record) (string, error) {
		b, err := r.resolve(ctx, c)
		if err != nil {
			return "", err
		}
		if b.ApplicationID != rec.ClientID {
			return "", fmt.Errorf("%s was mounted by application %s, scope holds %s: %w",
				rec.Path, rec.ClientID, b.ApplicationID, vfsmount.ErrCredentialNotFound)
		}
		return b.ClientSecret, nil
	}
}

func (r *runner) resolve(ctx context.Context, c *cli.Context) (auth.Bundle, error) {
	store, err := r.secretStore(c)
	if err != nil {
		return auth.Bundle{}, err
	}
	return auth.ResolveCredentials(ctx, store, c.GlobalString("scope"))
}

func (r *runner) manager(h vfsmount.Host) *mount.Manager {
	return mount.NewManager(h, mount.WithLogger(r.logger))
}

func (r *runner) mounts(c *cli.Context) error {
	h, err := r.openHost(c)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	mounts, err := r.manager(h).ListMounts(context.Background())
	if err != nil {
		return err
	}
	for _, m := range mounts {
		r.printMount(m)
	}
	return nil
}

func (r *runner) ls(c *cli.Context) error {
	p := c.Args().First()
	if p == "" {
		p = "/"
	}
	h, err := r.openHost(c)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	entries, err := r.manager(h).VerifyMount(context.Background(), p)
	if err != nil {
		return err
	}
	r.printEntries(entries)
	return nil
}

func (r *runner) mount(c *cli.Context) error {
	account := c.String("account")
	if account == "" {
		return errors.New("--account is required")
	}
	descriptors, err := parseMounts(account, c.StringSlice("mount"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	// credentials are resolved once and shared by every mount of this invocation
	bundle, err := r.resolve(ctx, c)
	if err != nil {
		return err
	}
	cfg, err := auth.BuildAuthConfig(bundle)
	if err != nil {
		return err
	}

	h, err := r.openHost(c)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	mgr := r.manager(h)
	for _, d := range descriptors {
		if err := mgr.EnsureMount(ctx, d, cfg); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprint(r.stdout, "mounted ")
		fmt.Fprintln(r.stdout, d)

		if c.Bool("no-verify") {
			continue
		}
		entries, err := mgr.VerifyMount(ctx, d.MountPath)
		if err != nil {
			return err
		}
		r.printEntries(entries)
	}
	return nil
}

func (r *runner) unmount(c *cli.Context) error {
	if !c.Args().Present() {
		return errors.New("at least one path is required")
	}
	h, err := r.openHost(c)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	mgr := r.manager(h)
	for _, p := range c.Args() {
		if err := mgr.Unmount(context.Background(), p); err != nil {
			return err
		}
		color.New(color.FgYellow).Fprint(r.stdout, "unmounted ")
		fmt.Fprintln(r.stdout, p)
	}
	return nil
}

// parseMounts turns container:path flag values into descriptors on account
func parseMounts(account string, values []string) ([]mount.Descriptor, error) {
	if len(values) == 0 {
		return nil, errors.New("at least one --mount container:path is required")
	}
	descriptors := make([]mount.Descriptor, 0, len(values))
	for _, v := range values {
		container, mountPath, ok := strings.Cut(v, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q must be container:path", vfsmount.ErrInvalidDescriptor, v)
		}
		d := mount.Descriptor{Container: container, StorageAccount: account, MountPath: mountPath}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

func (r *runner) printMount(m vfsmount.MountInfo) {
	color.New(color.FgCyan).Fprint(r.stdout, m.Path)
	fmt.Fprintf(r.stdout, "\t%s\n", m.Source)
}

func (r *runner) printEntries(entries []vfsmount.Entry) {
	dir := color.New(color.FgBlue, color.Bold)
	for _, e := range entries {
		if e.IsDir() {
			dir.Fprintln(r.stdout, e.Path)
			continue
		}
		fmt.Fprintf(r.stdout, "%s\t%d\n", e.Path, e.Size)
	}
}
