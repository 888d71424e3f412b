package domain

import (
	"net/url"
	"strings"
)

// platformRule maps host substrings to a display label. Rules are checked
// in order; the first match wins.
type platformRule struct {
	hosts []string
	label string
}

var platformRules = []platformRule{
	{[]string{"youtube.com", "youtu.be"}, "YouTube"},
	{[]string{"instagram.com"}, "Instagram"},
	{[]string{"twitter.com", "x.com"}, "Twitter/X"},
	{[]string{"tiktok.com"}, "TikTok"},
	{[]string{"facebook.com", "fb.watch"}, "Facebook"},
	{[]string{"vimeo.com"}, "Vimeo"},
	{[]string{"dailymotion.com"}, "Dailymotion"},
	{[]string{"twitch.tv"}, "Twitch"},
	{[]string{"reddit.com"}, "Reddit"},
	{[]string{"t.me", "telegram.org"}, "Telegram"},
}

// PlatformOther is the label for hosts no rule matches.
const PlatformOther = "Other"

// ClassifyPlatform derives a display label from the URL's host component.
// Matching is case-insensitive and purely string based; malformed URLs
// classify as Other rather than failing.
func ClassifyPlatform(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return PlatformOther
	}
	host := strings.ToLower(u.Hostname())

	for _, rule := range platformRules {
		for _, h := range rule.hosts {
			if strings.Contains(host, h) {
				return rule.label
			}
		}
	}
	return PlatformOther
}
