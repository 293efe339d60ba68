package account

import (
	"log/slog"
	"strconv"

	"github.com/amirasaad/accounts/pkg/config"
	"github.com/amirasaad/accounts/pkg/domain"
	"github.com/amirasaad/accounts/pkg/middleware"
	accountsvc "github.com/amirasaad/accounts/pkg/service/account"
	"github.com/amirasaad/accounts/pkg/utils"
	"github.com/amirasaad/accounts/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers HTTP routes for account operations.
//
// Routes:
//   - GET  /accounts/:number                                   : Fetch an account.
//   - POST /accounts                                           : Create an account from a JSON body.
//   - PUT  /accounts/create/:initialAmount                     : Create an account from the path.
//   - POST /accounts/:number/close, /accounts/close/:number    : Close an account.
//   - POST /transfers                                          : Transfer from a JSON body.
//   - POST /accounts/transfer/:source/to/:destination/:amount  : Transfer from the path.
//
// Mutating routes require a bearer token when a JWT secret is configured.
// Account numbers that are not numberLength digits are rejected with 400
// before the service is called.
func Routes(app *fiber.App, accountSvc *accountsvc.Service, cfg *config.App, logger *slog.Logger) {
	var jwtCfg *config.Jwt
	if cfg != nil && cfg.Auth != nil {
		jwtCfg = cfg.Auth.Jwt
	}
	protected := middleware.JwtProtected(jwtCfg)
	if logger == nil {
		logger = slog.Default()
	}
	numberLength := utils.DefaultAccountNumberLength
	if cfg != nil && cfg.Account != nil && cfg.Account.NumberLength > 0 {
		numberLength = cfg.Account.NumberLength
	}

	app.Get("/accounts/:number", GetAccount(accountSvc, logger, numberLength))
	app.Post("/accounts", protected, CreateAccount(accountSvc, logger))
	app.Put("/accounts/create/:initialAmount", protected, CreateAccountFromPath(accountSvc, logger))
	app.Post("/accounts/close/:number", protected, CloseAccount(accountSvc, logger, numberLength))
	app.Post("/accounts/:number/close", protected, CloseAccount(accountSvc, logger, numberLength))
	app.Post("/transfers", protected, Transfer(accountSvc, logger, numberLength))
	app.Post(
		"/accounts/transfer/:source/to/:destination/:amount",
		protected,
		TransferFromPath(accountSvc, logger, numberLength),
	)
}

func checkNumbers(length int, numbers ...string) error {
	for _, n := range numbers {
		if !utils.ValidateAccountNumber(n, length) {
			return domain.InvalidAccountNumber(n)
		}
	}
	return nil
}

// GetAccount returns a handler serving the committed state of an account.
func GetAccount(accountSvc *accountsvc.Service, logger *slog.Logger, numberLength int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := checkNumbers(numberLength, c.Params("number")); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get account", err)
		}
		a, err := accountSvc.GetAccount(c.UserContext(), c.Params("number"))
		if err != nil {
			logger.Warn("Failed to get account", "number", c.Params("number"), "error", err)
			return common.ProblemDetailsJSON(c, "Failed to get account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account fetched", ToAccountDTO(a))
	}
}

// CreateAccount returns a handler creating an account from a JSON body.
func CreateAccount(accountSvc *accountsvc.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err // error response already written
		}
		return createAccount(c, accountSvc, logger, input.InitialAmount)
	}
}

// CreateAccountFromPath returns a handler creating an account whose initial
// amount is taken from the path.
func CreateAccountFromPath(accountSvc *accountsvc.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		amount, err := strconv.ParseInt(c.Params("initialAmount"), 10, 64)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid amount", "initial amount must be an integer")
		}
		return createAccount(c, accountSvc, logger, amount)
	}
}

func createAccount(c *fiber.Ctx, accountSvc *accountsvc.Service, logger *slog.Logger, amount int64) error {
	a, err := accountSvc.CreateAccount(c.UserContext(), amount)
	if err != nil {
		logger.Error("Failed to create account", "amount", amount, "error", err)
		return common.ProblemDetailsJSON(c, "Failed to create account", err)
	}
	return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", ToAccountDTO(a))
}

// CloseAccount returns a handler closing the account named in the path.
func CloseAccount(accountSvc *accountsvc.Service, logger *slog.Logger, numberLength int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		number := c.Params("number")
		if err := checkNumbers(numberLength, number); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to close account", err)
		}
		a, err := accountSvc.CloseAccount(c.UserContext(), number)
		if err != nil {
			logger.Warn("Failed to close account", "number", number, "error", err)
			return common.ProblemDetailsJSON(c, "Failed to close account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account closed", ToAccountDTO(a))
	}
}

// Transfer returns a handler moving funds described by a JSON body.
func Transfer(accountSvc *accountsvc.Service, logger *slog.Logger, numberLength int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[TransferRequest](c)
		if input == nil {
			return err // error response already written
		}
		return transfer(c, accountSvc, logger, numberLength, input.Source, input.Destination, input.Amount)
	}
}

// TransferFromPath returns a handler moving funds described by the path.
func TransferFromPath(accountSvc *accountsvc.Service, logger *slog.Logger, numberLength int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		amount, err := strconv.ParseInt(c.Params("amount"), 10, 64)
		if err != nil {
			return common.ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid amount", "amount must be an integer")
		}
		return transfer(c, accountSvc, logger, numberLength, c.Params("source"), c.Params("destination"), amount)
	}
}

func transfer(
	c *fiber.Ctx,
	accountSvc *accountsvc.Service,
	logger *slog.Logger,
	numberLength int,
	source, dest string,
	amount int64,
) error {
	if err := checkNumbers(numberLength, source, dest); err != nil {
		return common.ProblemDetailsJSON(c, "Transfer failed", err)
	}
	res, err := accountSvc.Transfer(c.UserContext(), source, dest, amount)
	if err != nil {
		logger.Warn("Transfer failed", "source", source, "dest", dest, "amount", amount, "error", err)
		return common.ProblemDetailsJSON(c, "Transfer failed", err)
	}
	return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer successful", ToTransferDTO(res, amount))
}
