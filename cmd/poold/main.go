package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/iov-one/poolweave"
	pool "github.com/iov-one/poolweave/cmd/poold/app"
	"github.com/iov-one/poolweave/errors"
	"github.com/iov-one/poolweave/x/transfer"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flagHome  = "home"
	flagLog   = "log"
	flagDebug = "debug"
	varHome   *string
	varLog    *string
	varDebug  *bool
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".poold")
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")
	varLog = flag.String(flagLog, "info", "log level: debug, info, error or none")
	varDebug = flag.Bool(flagDebug, false, "report full errors in results")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("poold")
	fmt.Println("          Donation pool ledger")
	fmt.Println("")
	fmt.Println("help      Print this message")
	fmt.Println("init      Write a genesis file: init [-chain ID] ADMIN")
	fmt.Println("exec      Execute a YAML script of pool operations: exec FILE")
	fmt.Println("query     Print the committed state under a path: query PATH [KEY]")
	fmt.Println("transfers Print the funds sent and received by an address: transfers ADDRESS")
	fmt.Println(`
  -home string
        directory to store files under (default "$HOME/.poold")
  -log string
        log level: debug, info, error or none (default "info")
  -debug
        report full errors in results`)
}

func main() {
	flag.Parse()

	level, err := log.AllowLevel(*varLog)
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		helpMessage()
		os.Exit(1)
	}
	logger := log.NewFilter(log.NewTMLogger(log.NewSyncWriter(os.Stdout)), level).
		With("module", "pool")
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = initCmd(logger, *varHome, rest)
	case "exec":
		err = execCmd(logger, *varHome, rest)
	case "query":
		err = queryCmd(logger, *varHome, rest)
	case "transfers":
		err = transfersCmd(logger, *varHome, rest)
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}

func genesisFile(home string) string {
	return filepath.Join(home, "genesis.json")
}

func dataDir(home string) string {
	return filepath.Join(home, "data")
}

// initCmd writes the genesis file. ADMIN is a principal name.
func initCmd(logger log.Logger, home string, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	chainID := fs.String("chain", "pool-chain", "chain id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.Wrap(errors.ErrInput, "admin name required")
	}

	path := genesisFile(home)
	if _, err := os.Stat(path); err == nil {
		logger.Info("Found genesis file", "path", path)
		return nil
	}

	admin := pool.Principal(fs.Arg(0))
	gen, err := pool.NewGenesis(*chainID, admin.Address())
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(home, 0755); err != nil {
		return err
	}
	if err := ioutil.WriteFile(path, raw, 0644); err != nil {
		return err
	}
	logger.Info("Generated genesis file", "path", path, "admin", admin.Address())
	return nil
}

func readGenesis(home string) (*pool.Genesis, error) {
	raw, err := ioutil.ReadFile(genesisFile(home))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "genesis file: %s", err)
	}
	var gen pool.Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "genesis file: %s", err)
	}
	return &gen, nil
}

func execCmd(logger log.Logger, home string, args []string) error {
	if len(args) != 1 {
		return errors.Wrap(errors.ErrInput, "script file required")
	}
	gen, err := readGenesis(home)
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	script, err := pool.ParseScript(f)
	if err != nil {
		return err
	}

	kv, err := pool.CommitKVStore(dataDir(home))
	if err != nil {
		return err
	}
	sa, err := pool.Application("poold", kv, logger)
	if err != nil {
		return err
	}
	if sa.ChainID() == "" {
		if err := sa.InitChain(gen.ChainID, gen.AppState); err != nil {
			return err
		}
	}
	_, err = pool.Run(sa, script, os.Stdout, *varDebug)
	return err
}

func queryCmd(logger log.Logger, home string, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.Wrap(errors.ErrInput, "query path required")
	}
	var data []byte
	if len(args) == 2 {
		var err error
		if data, err = parseKey(args[1]); err != nil {
			return err
		}
	}

	kv, err := pool.CommitKVStore(dataDir(home))
	if err != nil {
		return err
	}
	sa, err := pool.Application("poold", kv, logger)
	if err != nil {
		return err
	}
	models, err := sa.Query(args[0], data)
	if err != nil {
		return err
	}
	type pair struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	pairs := make([]pair, len(models))
	for i, m := range models {
		pairs[i] = pair{Key: hex.EncodeToString(m.Key), Value: hex.EncodeToString(m.Value)}
	}
	out, err := json.MarshalIndent(pairs, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// transfersCmd prints the transfer journal of one address, for example
// "transfers name:alice" or "transfers hex:<address>".
func transfersCmd(logger log.Logger, home string, args []string) error {
	if len(args) != 1 {
		return errors.Wrap(errors.ErrInput, "address required")
	}
	addr, err := parseKey(args[0])
	if err != nil {
		return err
	}

	kv, err := pool.CommitKVStore(dataDir(home))
	if err != nil {
		return err
	}
	sa, err := pool.Application("poold", kv, logger)
	if err != nil {
		return err
	}
	sent, received, err := pool.Transfers(sa, addr)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(map[string][]*transfer.Transfer{
		"sent":     sent,
		"received": received,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// parseKey accepts a hex encoded key or a prefixed address, for example
// "name:alice" for a principal.
func parseKey(s string) ([]byte, error) {
	if strings.HasPrefix(s, "name:") {
		return pool.Principal(strings.TrimPrefix(s, "name:")).Address(), nil
	}
	if strings.Contains(s, ":") {
		return poolweave.ParseAddress(s)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "key must be hex encoded")
	}
	return raw, nil
}
