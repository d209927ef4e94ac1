package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/urfave/cli/v2"
)

var neworder = cli.Command{
	Name:  "neworder",
	Usage: "open a new payment order for a fiat amount",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "asset",
			Usage:    "the asset to be paid with: BTC, LBTC or ETH",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "amount",
			Usage:    "the fiat amount to be paid",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "currency",
			Usage: "the fiat currency code",
			Value: "USD",
		},
		&cli.StringFlag{
			Name:  "address_type",
			Usage: "the type of the receiving address, defaults to the one configured for the asset",
		},
		&cli.IntFlag{
			Name:  "confirmations",
			Usage: "the number of required confirmations, defaults to the configured one",
			Value: -1,
		},
	},
	Action: newOrderAction,
}

var getorder = cli.Command{
	Name:      "getorder",
	Usage:     "get the order with the given id",
	ArgsUsage: "<id>",
	Action:    getOrderAction,
}

var listorders = cli.Command{
	Name:  "listorders",
	Usage: "list orders, most recent first",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "status",
			Usage: "filter by status: pending, confirmed or expired",
		},
		&cli.StringFlag{
			Name:  "asset",
			Usage: "filter by asset",
		},
		&cli.IntFlag{
			Name:  "page",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "size",
			Value: 10,
		},
	},
	Action: listOrdersAction,
}

var checkorder = cli.Command{
	Name:      "checkorder",
	Usage:     "check the payment status of an order right away",
	ArgsUsage: "<id>",
	Action:    checkOrderAction,
}

func newOrderAction(ctx *cli.Context) error {
	body := map[string]interface{}{
		"asset":    ctx.String("asset"),
		"amount":   ctx.String("amount"),
		"currency": ctx.String("currency"),
	}
	if addressType := ctx.String("address_type"); addressType != "" {
		body["address_type"] = addressType
	}
	if confs := ctx.Int("confirmations"); confs >= 0 {
		body["required_confirmations"] = confs
	}

	resp, err := callDaemon(http.MethodPost, "/v1/orders", body)
	if err != nil {
		return err
	}
	printRespJSON(resp)
	return nil
}

func getOrderAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, "getorder"}
	}

	resp, err := callDaemon(
		http.MethodGet, fmt.Sprintf("/v1/orders/%s", url.PathEscape(ctx.Args().First())), nil,
	)
	if err != nil {
		return err
	}
	printRespJSON(resp)
	return nil
}

func listOrdersAction(ctx *cli.Context) error {
	query := url.Values{}
	if status := ctx.String("status"); status != "" {
		query.Set("status", status)
	}
	if asset := ctx.String("asset"); asset != "" {
		query.Set("asset", asset)
	}
	query.Set("page", strconv.Itoa(ctx.Int("page")))
	query.Set("size", strconv.Itoa(ctx.Int("size")))

	resp, err := callDaemon(http.MethodGet, "/v1/orders?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	printRespJSON(resp)
	return nil
}

func checkOrderAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, "checkorder"}
	}

	resp, err := callDaemon(
		http.MethodPost,
		fmt.Sprintf("/v1/orders/%s/check", url.PathEscape(ctx.Args().First())), nil,
	)
	if err != nil {
		return err
	}
	printRespJSON(resp)
	return nil
}
