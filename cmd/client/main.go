// Package main is the AyurTrace field client: an interactive shell for
// collectors and downstream nodes to register, log in with a wallet
// signature, submit batches and events, and verify a batch's journey.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/divya01062005/Ayurtrace/internal/chain"
	"github.com/divya01062005/Ayurtrace/internal/client/session"
	"github.com/divya01062005/Ayurtrace/internal/client/submit"
	"github.com/divya01062005/Ayurtrace/internal/client/verify"
	"github.com/divya01062005/Ayurtrace/internal/config"
	"github.com/divya01062005/Ayurtrace/internal/logger"
	"github.com/divya01062005/Ayurtrace/internal/models"
	"github.com/divya01062005/Ayurtrace/internal/wallet"
)

var (
	version   string
	buildDate string
)

const gpsTimeout = 20 * time.Second

// repl runs the interactive shell loop.
func repl(w *wallet.LocalWallet, sess *session.Manager, sub *submit.Submitter, rd *verify.Reader) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("ayurtrace> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		ctx := context.Background()
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, whoami, register <role> <name>, login, collect <herb> <kg> <lat> <lng> [location], event <batchId> <notes...>, verify <batchId>, logout, exit")
		case "whoami":
			if u := sess.User(); u != nil {
				fmt.Printf("%s (%s) %s\n", u.Name, u.Role, u.WalletAddress)
			} else {
				fmt.Println("Not logged in. Wallet:", w.Address())
			}
		case "register":
			if len(args) < 3 {
				fmt.Println("Usage: register <role> <name> [location]")
				continue
			}
			location := ""
			if len(args) > 3 {
				location = strings.Join(args[3:], " ")
			}
			user, err := sess.Register(ctx, w.Address(), args[1], args[2], location)
			if err != nil {
				fmt.Println("Registration failed:", err)
				continue
			}
			fmt.Printf("Registered %s as %s\n", user.Name, user.Role)
		case "login":
			message := session.LoginMessage(w.Address(), time.Now())
			signature, err := w.SignMessage(message)
			if err != nil {
				fmt.Println("Signing failed:", err)
				continue
			}
			user, err := sess.Login(ctx, w.Address(), signature, message)
			if err != nil {
				fmt.Println("Login failed:", err)
				continue
			}
			fmt.Printf("Welcome back, %s (%s)\n", user.Name, user.Role)
		case "collect":
			if len(args) < 5 {
				fmt.Println("Usage: collect <herb> <kg> <lat> <lng> [location]")
				continue
			}
			kg, err1 := strconv.ParseFloat(args[2], 64)
			lat, err2 := strconv.ParseFloat(args[3], 64)
			lng, err3 := strconv.ParseFloat(args[4], 64)
			if err1 != nil || err2 != nil || err3 != nil {
				fmt.Println("kg, lat, and lng must be numbers")
				continue
			}
			locator := &submit.FixedLocator{Fix: submit.Location{Latitude: lat, Longitude: lng}}
			fix, err := submit.Capture(ctx, locator, gpsTimeout)
			if err != nil {
				fmt.Println("GPS capture failed:", err)
				continue
			}
			locationName := ""
			if len(args) > 5 {
				locationName = strings.Join(args[5:], " ")
			}
			result, err := sub.CreateBatch(ctx, submit.BatchInput{
				HerbName:     args[1],
				QuantityKg:   kg,
				Location:     &fix,
				LocationName: locationName,
			})
			if err != nil {
				fmt.Println("Batch creation failed:", err)
				continue
			}
			fmt.Println("Batch created:", result.BatchID)
			if result.TxHash != "" {
				fmt.Println("Transaction:", result.TxHash)
			}
		case "event":
			if len(args) < 3 {
				fmt.Println("Usage: event <batchId> <notes...>")
				continue
			}
			user := sess.User()
			if user == nil {
				fmt.Println("Log in first")
				continue
			}
			role, err := models.ParseRole(user.Role)
			if err != nil {
				fmt.Println("Unknown role:", user.Role)
				continue
			}
			node, ok := models.NodeTypeForRole(role)
			if !ok {
				fmt.Println("Role", user.Role, "cannot log events")
				continue
			}
			result, err := sub.LogEvent(ctx, submit.EventInput{
				BatchID:  args[1],
				NodeType: node,
				Notes:    strings.Join(args[2:], " "),
			})
			if err != nil {
				fmt.Println("Event logging failed:", err)
				continue
			}
			fmt.Println("Event logged for batch", result.Event.BatchID)
			if result.TxHash != "" {
				fmt.Println("Transaction:", result.TxHash)
			}
		case "verify":
			if len(args) < 2 {
				fmt.Println("Usage: verify <batchId>")
				continue
			}
			result, err := rd.Verify(ctx, args[1])
			if err != nil {
				fmt.Println("Verification failed:", err)
				continue
			}
			b, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(b))
		case "logout":
			if err := sess.Logout(); err != nil {
				fmt.Println("Logout failed:", err)
			} else {
				fmt.Println("Logged out")
			}
		case "exit":
			return
		default:
			fmt.Println("Unknown command. Type 'help'.")
		}
	}
}

func main() {
	_ = godotenv.Load()
	options := config.Parse()

	fmt.Printf("AyurTrace client %s (%s)\n", version, buildDate)

	log := logger.New()
	if err := log.Init("Warn"); err != nil {
		fmt.Println("logger init failed:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Log.Sync() }()

	w, err := clientWallet(options.PrivateKey)
	if err != nil {
		fmt.Println("wallet init failed:", err)
		os.Exit(1)
	}

	store, err := session.NewFileStore(options.SessionDir)
	if err != nil {
		fmt.Println("session store init failed:", err)
		os.Exit(1)
	}

	sess := session.NewManager(options.APIBaseURL, nil, store, log.Log)
	sess.Restore()

	// The chain connection is optional; without it submissions fall
	// back to backend-only writes.
	var chainClient chain.Client
	if options.RPCURL != "" && options.ContractAddress != "" {
		chainClient, err = chain.NewClient("ethereum", options, w, log.Log)
		if err != nil {
			fmt.Println("chain connection failed, continuing without it:", err)
			chainClient = nil
		} else {
			defer func() { _ = chainClient.Close() }()
		}
	}

	sub := submit.NewSubmitter(sess, chainClient, log.Log)
	rd := verify.NewReader(options.APIBaseURL, nil, chainClient, log.Log)

	repl(w, sess, sub, rd)
}

func clientWallet(hexKey string) (*wallet.LocalWallet, error) {
	if hexKey != "" {
		return wallet.NewLocalWallet(hexKey)
	}
	fmt.Println("No wallet key configured, generating a throwaway wallet")
	return wallet.NewRandomWallet()
}
