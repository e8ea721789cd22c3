//go:build ignore

// Verifies that the PROXY configured in .env actually hides the real IP and
// can reach the target site before a scrape run depends on it.
package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const targetSite = "https://www.booking.com"

func main() {
	_ = godotenv.Load()

	proxyRaw := os.Getenv("PROXY")
	if proxyRaw == "" {
		fmt.Println("no PROXY variable found in the environment or .env")
		os.Exit(1)
	}

	fmt.Println("checking real IP (no proxy)...")

	realIP, err := publicIP(nil)
	if err != nil {
		fmt.Printf("could not determine real IP: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("  real IP: %s\n", realIP)

	proxy, err := url.Parse(proxyRaw)
	if err != nil {
		fmt.Printf("invalid proxy URL %q: %v\n", proxyRaw, err)
		os.Exit(1)
	}

	fmt.Printf("checking IP through proxy %s...\n", proxy.Redacted())

	proxyIP, err := publicIP(proxy)
	if err != nil {
		fmt.Printf("proxy check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("  proxy IP: %s\n", proxyIP)

	if realIP == proxyIP {
		fmt.Println("FAIL: proxy exposes the real IP")
		os.Exit(1)
	}

	fmt.Println("checking target site reachability through proxy...")

	if err := reachable(proxy, targetSite); err != nil {
		fmt.Printf("FAIL: target unreachable through proxy: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("OK: proxy hides the real IP and reaches the target site")
}

func publicIP(proxy *url.URL) (string, error) {
	client := newClient(proxy)

	services := []string{
		"https://api.ipify.org",
		"https://icanhazip.com",
		"https://ifconfig.me/ip",
	}

	for _, service := range services {
		resp, err := client.Get(service)
		if err != nil {
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if err != nil {
			continue
		}

		if ip := strings.TrimSpace(string(body)); ip != "" {
			return ip, nil
		}
	}

	return "", fmt.Errorf("no IP service responded")
}

func reachable(proxy *url.URL, target string) error {
	resp, err := newClient(proxy).Get(target)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return nil
}

func newClient(proxy *url.URL) *http.Client {
	client := &http.Client{Timeout: 10 * time.Second}

	if proxy != nil {
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxy)}
	}

	return client
}
