package trader

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/tradingfloor/account"
	"github.com/hupe1980/tradingfloor/logging"
	"github.com/hupe1980/tradingfloor/research"
	"github.com/hupe1980/tradingfloor/tool"
	"github.com/hupe1980/tradingfloor/tool/mcp"
)

// DefaultAccountsServer is the server name the account service reads from.
const DefaultAccountsServer = "accounts"

// Resources are what one trader run needs from the outside world. They are
// created fresh for every run and released by Close.
type Resources struct {
	Accounts   account.Service
	Researcher tool.Tool
	Tools      []tool.Tool

	closers []func() error
}

// Close releases the resources in reverse order of acquisition.
func (r *Resources) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// OnClose registers fn to run when the resources are closed.
func (r *Resources) OnClose(fn func() error) { r.closers = append(r.closers, fn) }

// Provisioner acquires the resources of one run.
type Provisioner interface {
	Provision(ctx context.Context, id Identity) (*Resources, error)
}

// ProvisionerFunc adapts a function to the Provisioner interface.
type ProvisionerFunc func(ctx context.Context, id Identity) (*Resources, error)

// Provision implements Provisioner.
func (f ProvisionerFunc) Provision(ctx context.Context, id Identity) (*Resources, error) {
	return f(ctx, id)
}

// MCPProvisioner opens the trader's MCP servers and a fresh researcher.
type MCPProvisioner struct {
	Servers        []mcp.ServerSpec
	AccountsServer string
	Research       *research.Factory
	Extra          []tool.Tool
	Launch         mcp.Launcher
	Logger         logging.Logger
}

// Provision implements Provisioner.
func (p *MCPProvisioner) Provision(ctx context.Context, id Identity) (*Resources, error) {
	logger := p.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	launch := p.Launch
	if launch == nil {
		launch = mcp.OpenAll
	}
	accountsServer := p.AccountsServer
	if accountsServer == "" {
		accountsServer = DefaultAccountsServer
	}

	sets, err := launch(ctx, p.Servers, logger)
	if err != nil {
		return nil, fmt.Errorf("trader servers: %w", err)
	}
	res := &Resources{}
	res.OnClose(func() error { return mcp.CloseAll(sets) })

	accounts := mcp.Find(sets, accountsServer)
	if accounts == nil {
		return nil, errors.Join(fmt.Errorf("no %q server configured", accountsServer), res.Close())
	}
	res.Accounts = account.NewMCPService(accounts)

	researcher, closeResearch, err := p.Research.MakeTool(ctx, id.Name, id.ModelID)
	if err != nil {
		return nil, errors.Join(err, res.Close())
	}
	res.OnClose(closeResearch)
	res.Researcher = researcher

	res.Tools = append(mcp.Tools(sets), p.Extra...)
	return res, nil
}

var _ Provisioner = (*MCPProvisioner)(nil)
