package syncs

import (
	"errors"
	"fmt"

	"github.com/iankellyUW/relaxed-point-planner/internal/calendar"
	"github.com/iankellyUW/relaxed-point-planner/internal/cli"
	"github.com/iankellyUW/relaxed-point-planner/internal/models"
)

type ConnectCmd struct {
	AccessToken  string `help:"OAuth access token." required:""`
	RefreshToken string `help:"OAuth refresh token (enables automatic renewal)."`
	ExpiresIn    int    `help:"Token lifetime in seconds." default:"3600"`
}

func (c *ConnectCmd) Run(ctx *cli.Context) error {
	creds := models.Credentials{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		ExpiresIn:    c.ExpiresIn,
		TokenType:    "Bearer",
	}
	err := ctx.Calendar.SetCredentials(creds)
	if errors.Is(err, calendar.ErrCredentialPersistence) {
		fmt.Println("Connected for this session, but credentials could not be saved; you will need to reconnect next time.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println("Calendar connected.")
	return nil
}
