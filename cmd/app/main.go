package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/report"
	"github.com/urfave/cli/v3"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	if err := newRootCommand().Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "cmmc",
		Usage: "CMMC Level 2 asset and diagram inventory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file", Sources: cli.EnvVars("CMMC_CONFIG")},
			&cli.StringFlag{Name: "db-path", Usage: "SQLite database path"},
			&cli.BoolFlag{Name: "ephemeral", Usage: "keep the inventory in memory only"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "metrics-textfile", Usage: "write storage metrics to this file on exit"},
			&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
		},
		Commands: []*cli.Command{
			appsCommand(),
			assetsCommand(),
			diagramsCommand(),
			connectionsCommand(),
			zonesCommand(),
			categoriesCommand(),
			storageCommand(),
			orgCommand(),
			exportCommand(),
			reportCommand(),
		},
	}
}

func idFlag(usage string) cli.Flag {
	return &cli.StringFlag{Name: "id", Required: true, Usage: usage}
}

func applicationFlags(add bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Required: add},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "owner", Usage: "owner name or email"},
		&cli.StringFlag{Name: "team"},
		&cli.StringFlag{Name: "category", Usage: "cui, spa, crma, specialized or oos"},
		&cli.StringFlag{Name: "environment", Usage: "production, staging, development or dr"},
		&cli.StringSliceFlag{Name: "cui-type", Usage: "CUI category, repeatable"},
		&cli.StringFlag{Name: "data-classification"},
		&cli.StringFlag{Name: "external-connections"},
		&cli.StringFlag{Name: "zone"},
		&cli.StringSliceFlag{Name: "tag", Usage: "repeatable"},
	}
}

func appsCommand() *cli.Command {
	return &cli.Command{
		Name:  "apps",
		Usage: "Application commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List applications",
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out := rt.store.Applications()
					if c.Bool("json") {
						return printJSON(out)
					}
					printApplications(out)
					return nil
				}),
			},
			{
				Name:  "show",
				Usage: "Show one application",
				Flags: []cli.Flag{idFlag("application id")},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out, err := doAppsShow(rt, c)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printApplication(out)
					return nil
				}),
			},
			{
				Name:  "add",
				Usage: "Add application",
				Flags: applicationFlags(true),
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out, err := doAppsAdd(ctx, rt, c)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printApplication(out)
					return nil
				}),
			},
			{
				Name:  "update",
				Usage: "Update application fields that are given",
				Flags: append([]cli.Flag{idFlag("application id")}, applicationFlags(false)...),
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out, err := doAppsUpdate(ctx, rt, c)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printApplication(out)
					return nil
				}),
			},
			{
				Name:  "remove",
				Usage: "Remove application with its diagrams and connections",
				Flags: []cli.Flag{idFlag("application id")},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					if err := doAppsRemove(ctx, rt, c); err != nil {
						return err
					}
					fmt.Printf("removed application %s\n", c.String("id"))
					return nil
				}),
			},
			{
				Name:  "diagrams",
				Usage: "List diagrams for an application, global ones included",
				Flags: []cli.Flag{idFlag("application id")},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out := rt.store.ApplicationDiagrams(c.String("id"))
					if c.Bool("json") {
						return printJSON(out)
					}
					printDiagrams(out)
					return nil
				}),
			},
			{
				Name:  "connections",
				Usage: "List connections touching an application",
				Flags: []cli.Flag{idFlag("application id")},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out := rt.store.ApplicationConnections(c.String("id"))
					if c.Bool("json") {
						return printJSON(out)
					}
					printConnections(out)
					return nil
				}),
			},
			{
				Name:  "assets",
				Usage: "List assets attached to an application",
				Flags: []cli.Flag{idFlag("application id")},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out := rt.store.ApplicationAssets(c.String("id"))
					if c.Bool("json") {
						return printJSON(out)
					}
					printAssets(out)
					return nil
				}),
			},
		},
	}
}

func assetFlags(add bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Required: add},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "type", Usage: "server, workstation, laptop, network, firewall, cloud, ..."},
		&cli.StringFlag{Name: "scope", Usage: "cui, spa, crma, specialized or oos"},
		&cli.StringFlag{Name: "hostname"},
		&cli.StringFlag{Name: "ip", Usage: "IPv4 or IPv6 address"},
		&cli.StringFlag{Name: "location"},
		&cli.StringFlag{Name: "owner"},
		&cli.IntFlag{Name: "quantity", Value: 1},
		&cli.StringFlag{Name: "zone"},
		&cli.StringSliceFlag{Name: "tag", Usage: "repeatable"},
		&cli.StringFlag{Name: "app", Usage: "owning application id"},
	}
}

func assetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "assets",
		Usage: "Asset commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List assets",
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out := rt.store.Assets()
					if c.Bool("json") {
						return printJSON(out)
					}
					printAssets(out)
					return nil
				}),
			},
			{
				Name:  "show",
				Usage: "Show one asset",
				Flags: []cli.Flag{idFlag("asset id")},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out, err := doAssetsShow(rt, c)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAsset(out)
					return nil
				}),
			},
			{
				Name:  "add",
				Usage: "Add asset",
				Flags: assetFlags(true),
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out, err := doAssetsAdd(ctx, rt, c)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAsset(out)
					return nil
				}),
			},
			{
				Name:  "update",
				Usage: "Update asset fields that are given",
				Flags: append([]cli.Flag{idFlag("asset id")}, assetFlags(false)...),
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out, err := doAssetsUpdate(ctx, rt, c)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printAsset(out)
					return nil
				}),
			},
			{
				Name:  "remove",
				Usage: "Remove asset and its connections",
				Flags: []cli.Flag{idFlag("asset id")},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					if err := doAssetsRemove(ctx, rt, c); err != nil {
						return err
					}
					fmt.Printf("removed asset %s\n", c.String("id"))
					return nil
				}),
			},
			{
				Name:  "connections",
				Usage: "List connections touching an asset",
				Flags: []cli.Flag{idFlag("asset id")},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out := rt.store.AssetConnections(c.String("id"))
					if c.Bool("json") {
						return printJSON(out)
					}
					printConnections(out)
					return nil
				}),
			},
		},
	}
}

func diagramFlags(add bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Required: add},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "type", Usage: "data-flow, network, system-boundary, enclave, integration or physical"},
		&cli.StringFlag{Name: "app", Usage: "application id, empty or global for every application"},
		&cli.StringFlag{Name: "source", Usage: "figma, drawio, lucidchart, visio, image, pdf or mermaid"},
		&cli.StringFlag{Name: "url", Usage: "source link, required for figma and lucidchart"},
		&cli.StringFlag{Name: "file", Usage: "attach a diagram file"},
		&cli.StringFlag{Name: "file-type", Usage: "MIME type of --file, detected when empty"},
		&cli.StringFlag{Name: "mermaid", Usage: "inline mermaid code"},
		&cli.StringFlag{Name: "mermaid-file", Usage: "read mermaid code from a file"},
		&cli.StringFlag{Name: "version"},
		&cli.StringSliceFlag{Name: "category", Usage: "asset category shown, repeatable"},
		&cli.StringSliceFlag{Name: "scoped-asset", Usage: "asset id, repeatable"},
		&cli.StringFlag{Name: "annotations"},
		&cli.BoolFlag{Name: "cui-boundary"},
		&cli.StringSliceFlag{Name: "security-zone", Usage: "repeatable"},
		&cli.StringSliceFlag{Name: "control", Usage: "related control id, repeatable"},
	}
}

func diagramsCommand() *cli.Command {
	return &cli.Command{
		Name:  "diagrams",
		Usage: "Diagram commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List diagrams",
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out := rt.store.Diagrams()
					if c.Bool("json") {
						return printJSON(out)
					}
					printDiagrams(out)
					return nil
				}),
			},
			{
				Name:  "show",
				Usage: "Show one diagram",
				Flags: []cli.Flag{idFlag("diagram id")},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out, err := doDiagramsShow(rt, c)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printDiagram(out)
					return nil
				}),
			},
			{
				Name:  "add",
				Usage: "Add diagram",
				Flags: diagramFlags(true),
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out, err := doDiagramsAdd(ctx, rt, c)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printDiagram(out)
					return nil
				}),
			},
			{
				Name:  "update",
				Usage: "Update diagram fields that are given",
				Flags: append([]cli.Flag{idFlag("diagram id")}, diagramFlags(false)...),
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out, err := doDiagramsUpdate(ctx, rt, c)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printDiagram(out)
					return nil
				}),
			},
			{
				Name:  "remove",
				Usage: "Remove diagram",
				Flags: []cli.Flag{idFlag("diagram id")},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					if err := doDiagramsRemove(ctx, rt, c); err != nil {
						return err
					}
					fmt.Printf("removed diagram %s\n", c.String("id"))
					return nil
				}),
			},
			{
				Name:  "inspect-drawio",
				Usage: "List shapes and connectors of a draw.io file or stored diagram",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "path to a .drawio file"},
					&cli.StringFlag{Name: "id", Usage: "stored diagram id"},
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out, err := doDiagramsInspect(rt, c)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printDrawio(out)
					return nil
				}),
			},
		},
	}
}

func connectionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "connections",
		Usage: "Data flow connection commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List connections",
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out := rt.store.Connections()
					if c.Bool("json") {
						return printJSON(out)
					}
					printConnections(out)
					return nil
				}),
			},
			{
				Name:  "add",
				Usage: "Connect two applications or two assets",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from-app"},
					&cli.StringFlag{Name: "to-app"},
					&cli.StringFlag{Name: "from-asset"},
					&cli.StringFlag{Name: "to-asset"},
					&cli.StringFlag{Name: "data-type", Usage: "defaults to CUI"},
					&cli.StringFlag{Name: "protocol"},
					&cli.BoolFlag{Name: "encrypted", Value: true},
					&cli.StringFlag{Name: "direction", Usage: "unidirectional or bidirectional"},
					&cli.StringFlag{Name: "description"},
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out, err := doConnectionsAdd(ctx, rt, c)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printConnections([]domain.Connection{out})
					return nil
				}),
			},
			{
				Name:  "remove",
				Usage: "Remove connection",
				Flags: []cli.Flag{idFlag("connection id")},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					if err := doConnectionsRemove(ctx, rt, c); err != nil {
						return err
					}
					fmt.Printf("removed connection %s\n", c.String("id"))
					return nil
				}),
			},
		},
	}
}

func zonesCommand() *cli.Command {
	return &cli.Command{
		Name:  "zones",
		Usage: "Security zone commands",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List zones",
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out := rt.store.Zones()
					if c.Bool("json") {
						return printJSON(out)
					}
					printZones(out)
					return nil
				}),
			},
			{
				Name:  "add",
				Usage: "Add zone",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.StringFlag{Name: "type", Usage: "enclave, dmz, external or internal"},
					&cli.StringSliceFlag{Name: "app", Usage: "member application id, repeatable"},
					&cli.StringFlag{Name: "color"},
				},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out, err := doZonesAdd(ctx, rt, c)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printZones([]domain.Zone{out})
					return nil
				}),
			},
			{
				Name:  "remove",
				Usage: "Remove zone",
				Flags: []cli.Flag{idFlag("zone id")},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					if err := doZonesRemove(ctx, rt, c); err != nil {
						return err
					}
					fmt.Printf("removed zone %s\n", c.String("id"))
					return nil
				}),
			},
			{
				Name:  "apps",
				Usage: "List applications in a zone",
				Flags: []cli.Flag{idFlag("zone id")},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out := rt.store.ZoneApplications(c.String("id"))
					if c.Bool("json") {
						return printJSON(out)
					}
					printApplications(out)
					return nil
				}),
			},
		},
	}
}

func categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List CMMC asset categories",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Bool("json") {
				out := map[domain.AssetCategory]domain.CategoryInfo{}
				for _, cat := range domain.AssetCategories() {
					out[cat] = cat.Info()
				}
				return printJSON(out)
			}
			printCategories()
			return nil
		},
	}
}

func storageCommand() *cli.Command {
	return &cli.Command{
		Name:  "storage",
		Usage: "Storage capacity commands",
		Commands: []*cli.Command{
			{
				Name:  "usage",
				Usage: "Show accounted storage usage against the limits",
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out := doStorageUsage(ctx, rt)
					if c.Bool("json") {
						return printJSON(out)
					}
					printStorageUsage(out)
					return nil
				}),
			},
			{
				Name:  "stats",
				Usage: "Show storage guard metrics for this invocation",
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out, err := doStorageStats(ctx, rt)
					if err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printMetrics(out)
					return nil
				}),
			},
		},
	}
}

func orgCommand() *cli.Command {
	return &cli.Command{
		Name:  "org",
		Usage: "Organization metadata",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show inventory metadata",
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out := rt.store.Metadata()
					if c.Bool("json") {
						return printJSON(out)
					}
					printMetadata(out)
					return nil
				}),
			},
			{
				Name:  "set-name",
				Usage: "Set the organization name",
				Flags: []cli.Flag{&cli.StringFlag{Name: "name", Required: true}},
				Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
					out := rt.store.SetOrgName(ctx, rt.clean(c.String("name")))
					if err := rt.checkPersisted(); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printMetadata(out)
					return nil
				}),
			},
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Print the whole inventory document as JSON",
		Flags: []cli.Flag{&cli.StringFlag{Name: "out", Usage: "write to file instead of stdout"}},
		Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
			doc := rt.store.Document()
			if path := c.String("out"); path != "" {
				b, err := jsonMarshal(doc)
				if err != nil {
					return err
				}
				return os.WriteFile(path, b, 0o600)
			}
			return printJSON(doc)
		}),
	}
}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Render an HTML inventory summary",
		Flags: []cli.Flag{&cli.StringFlag{Name: "out", Usage: "write to file instead of stdout"}},
		Action: withRuntime(func(ctx context.Context, c *cli.Command, rt *runtime) error {
			doc := rt.store.Document()
			path := c.String("out")
			if path == "" {
				return report.WriteHTML(os.Stdout, doc)
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return err
			}
			if err := report.WriteHTML(f, doc); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		}),
	}
}
