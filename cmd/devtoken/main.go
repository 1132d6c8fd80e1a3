package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/ikkim/manajir-storefront/config"
	"github.com/ikkim/manajir-storefront/pkg/util"
)

const (
	accessExpiry  = time.Hour
	refreshExpiry = 7 * 24 * time.Hour
)

// tokenRequest is one account to sign tokens for:
// <user_id> <email> [role]
type tokenRequest struct {
	UserID int64
	Email  string
	Role   string
}

func main() {
	req, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Fatal("Usage: go run cmd/devtoken/main.go <user_id> <email> [role]: ", err)
	}

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if cfg.Server.Environment == "production" {
		log.Fatal("devtoken is disabled in production")
	}

	pair, err := util.GenerateTokenPair(req.UserID, req.Email, req.Role, cfg.JWT.Secret, accessExpiry, refreshExpiry)
	if err != nil {
		log.Fatal("Failed to sign tokens:", err)
	}

	out, _ := json.MarshalIndent(pair, "", "  ")
	fmt.Println(string(out))
}

func parseArgs(args []string) (tokenRequest, error) {
	if len(args) < 2 {
		return tokenRequest{}, fmt.Errorf("expected user id and email")
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || userID <= 0 {
		return tokenRequest{}, fmt.Errorf("invalid user id %q", args[0])
	}

	// 역할이 없으면 일반 사용자
	role := "user"
	if len(args) > 2 && args[2] != "" {
		role = args[2]
	}
	return tokenRequest{UserID: userID, Email: args[1], Role: role}, nil
}
