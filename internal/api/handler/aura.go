package handler

import (
	"errors"
	"strconv"

	"clapo/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupAura struct {
	container *do.Injector
}

type updatePayload struct {
	Amount          int    `json:"amount"`
	TransactionType string `json:"transaction_type"`
	Metadata        string `json:"metadata"`
}

func pathUserID(c echo.Context) (string, error) {
	userID := c.Param("user")
	if userID == "" || userID == "undefined" {
		return "", errorx.Wrap(errors.New("user is required"), errorx.Invalid)
	}
	return userID, nil
}

func pagingParams(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}

// service-to-service endpoints

func (gr *groupAura) Show(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := pathUserID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceAura, err := do.Invoke[*services.ServiceAura](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	account, err := serviceAura.GetAccount(ctx, userID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, account, nil)
}

func (gr *groupAura) Update(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := pathUserID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload updatePayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceAura, err := do.Invoke[*services.ServiceAura](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	account, err := serviceAura.ApplyTransaction(ctx, userID, payload.Amount, payload.TransactionType, payload.Metadata)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, account, nil)
}

func (gr *groupAura) TierState(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := pathUserID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceAura, err := do.Invoke[*services.ServiceAura](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	state, err := serviceAura.GetTierState(ctx, userID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, state, nil)
}

func (gr *groupAura) Transactions(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := pathUserID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	limit, offset := pagingParams(c)

	serviceAura, err := do.Invoke[*services.ServiceAura](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	page, err := serviceAura.ListTransactions(ctx, userID, limit, offset)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, page, nil)
}

func (gr *groupAura) RewardPost(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := pathUserID(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload struct {
		Metadata string `json:"metadata"`
	}
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceAura, err := do.Invoke[*services.ServiceAura](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	account, err := serviceAura.RewardPost(ctx, userID, payload.Metadata)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, account, nil)
}

// end-user endpoints

func (gr *groupAura) Me(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceAura, err := do.Invoke[*services.ServiceAura](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	account, err := serviceAura.GetAccount(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, account, nil)
}

func (gr *groupAura) MyDailyStatus(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceAura, err := do.Invoke[*services.ServiceAura](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	status, err := serviceAura.DailyStatus(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, status, nil)
}

func (gr *groupAura) MyTransactions(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	limit, offset := pagingParams(c)

	serviceAura, err := do.Invoke[*services.ServiceAura](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	page, err := serviceAura.ListTransactions(ctx, user.ID, limit, offset)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, page, nil)
}

func (gr *groupAura) ClaimDailyBonus(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceAura, err := do.Invoke[*services.ServiceAura](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	account, err := serviceAura.ClaimDailyBonus(ctx, user.ID)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, account, nil)
}
