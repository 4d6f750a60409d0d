package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "output raw JSON"}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authentication commands",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Login and store the CLI token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "transport", Value: "uds", Usage: "uds or http"},
					&cli.StringFlag{Name: "server", Value: defaultServer},
					&cli.StringFlag{Name: "socket", Value: defaultSocket},
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg := cliConfig{Transport: c.String("transport"), Server: c.String("server"), Socket: c.String("socket")}
					out, err := doLogin(ctx, cfg, c.String("username"), c.String("password"))
					if err != nil {
						return err
					}
					cfg.Token = out.Token
					if err := saveConfig(cfg); err != nil {
						return err
					}
					fmt.Printf("logged in as %s (%s)\n", out.Username, out.UserID)
					return nil
				},
			},
			{
				Name:  "whoami",
				Usage: "Show the authenticated user",
				Flags: []cli.Flag{jsonFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadSession()
					if err != nil {
						return err
					}
					out, err := doWhoAmI(ctx, cfg)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printKV([][2]string{{"user_id", out.UserID}, {"username", out.Username}, {"role_id", strconv.Itoa(out.RoleID)}})
					return nil
				},
			},
			{
				Name:  "logout",
				Usage: "Forget the local CLI token",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					cfg.Token = ""
					if err := saveConfig(cfg); err != nil {
						return err
					}
					fmt.Println("logged out")
					return nil
				},
			},
		},
	}
}

func equipmentCommand() *cli.Command {
	return &cli.Command{
		Name:  "equipment",
		Usage: "Equipment catalog commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List equipment with item counts",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "type"},
					&cli.StringFlag{Name: "brand"},
					jsonFlag(),
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadSession()
					if err != nil {
						return err
					}
					out, err := doEquipmentList(ctx, cfg, c.String("name"), c.String("type"), c.String("brand"))
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printEquipment(out)
					return nil
				},
			},
		},
	}
}

func itemsCommand() *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "Item and status history commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List items",
				Flags: []cli.Flag{&cli.StringFlag{Name: "serial"}, &cli.StringFlag{Name: "status"}, jsonFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadSession()
					if err != nil {
						return err
					}
					out, err := doItemsList(ctx, cfg, c.String("serial"), c.String("status"))
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printItems(out)
					return nil
				},
			},
			{
				Name:  "history",
				Usage: "Show the status history of an item",
				Flags: []cli.Flag{&cli.StringFlag{Name: "item-id", Required: true}, jsonFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadSession()
					if err != nil {
						return err
					}
					out, err := doItemHistory(ctx, cfg, c.String("item-id"))
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printHistory(out)
					return nil
				},
			},
			{
				Name:  "set-status",
				Usage: "Change the status of an item and record it in the history",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "item-id", Required: true},
					&cli.StringFlag{Name: "status", Required: true},
					&cli.StringFlag{Name: "note"},
					&cli.StringFlag{Name: "object-id"},
					jsonFlag(),
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadSession()
					if err != nil {
						return err
					}
					out, err := doChangeStatus(ctx, cfg, c.String("item-id"), c.String("status"), c.String("note"), c.String("object-id"))
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					if !out.Changed {
						fmt.Println("status unchanged")
						return nil
					}
					fmt.Printf("status recorded as %s\n", out.StatusID)
					return nil
				},
			},
		},
	}
}

func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Show the device summary",
		Flags: []cli.Flag{jsonFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadSession()
			if err != nil {
				return err
			}
			out, err := doSummary(ctx, cfg)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return printJSON(out)
			}
			printSummary(out)
			return nil
		},
	}
}

func uploadsCommand() *cli.Command {
	return &cli.Command{
		Name:  "uploads",
		Usage: "Upload staging maintenance",
		Commands: []*cli.Command{
			{
				Name:  "sweep",
				Usage: "Remove abandoned chunk uploads",
				Flags: []cli.Flag{&cli.StringFlag{Name: "stale-after", Value: "24h"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadSession()
					if err != nil {
						return err
					}
					removed, err := doSweep(ctx, cfg, c.String("stale-after"))
					if err != nil {
						return err
					}
					fmt.Printf("removed %d staged uploads\n", removed)
					return nil
				},
			},
		},
	}
}
