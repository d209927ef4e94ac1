package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/urfave/cli/v2"
)

var addwebhook = cli.Command{
	Name:  "addwebhook",
	Usage: "add a webhook registered for some order event",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "the endpoint where to notify the webhook",
		},
		&cli.StringFlag{
			Name:  "secret",
			Usage: "the eventual secret to authenticate requests",
		},
		&cli.StringFlag{
			Name:  "topic",
			Usage: "the event for which the webhook gets notified: OrderUnconfirmed, OrderConfirmed, OrderUnderpaid, OrderExpired or * for all",
			Value: "*",
		},
	},
	Action: addWebhookAction,
}

var listwebhooks = cli.Command{
	Name:   "listwebhooks",
	Usage:  "list all registered webhooks",
	Action: listWebhooksAction,
}

var removewebhook = cli.Command{
	Name:  "removewebhook",
	Usage: "remove some registered webhook",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "id",
			Usage: "the id of the webhook to remove",
		},
	},
	Action: removeWebhookAction,
}

func addWebhookAction(ctx *cli.Context) error {
	resp, err := callDaemon(http.MethodPost, "/v1/webhooks", map[string]string{
		"topic":    ctx.String("topic"),
		"endpoint": ctx.String("endpoint"),
		"secret":   ctx.String("secret"),
	})
	if err != nil {
		return err
	}
	printRespJSON(resp)
	return nil
}

func listWebhooksAction(ctx *cli.Context) error {
	resp, err := callDaemon(http.MethodGet, "/v1/webhooks", nil)
	if err != nil {
		return err
	}
	printRespJSON(resp)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	id := ctx.String("id")
	if id == "" {
		return &invalidUsageError{ctx, "removewebhook"}
	}

	if _, err := callDaemon(
		http.MethodDelete, "/v1/webhooks/"+url.PathEscape(id), nil,
	); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("webhook removed")
	return nil
}
