package producthunt

import (
	"errors"
	"fmt"
	"strings"
)

const datePrefix = "2006-01-02"

var (
	ErrNoProducts = errors.New("no products in data cache")
	ErrParse      = errors.New("failed to parse model response")
)

// Product is one leaderboard entry. Every field is optional: the model
// extracts what the markdown happens to contain.
type Product struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Url         string `json:"url"`
}

type Products struct {
	Products []Product `json:"products"`
}

// Slug derives the cache filename fragment from the product name.
func (p Product) Slug() string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return "product"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

type MakerLink struct {
	Name string `json:"name"`
	Url  string `json:"url"`
}

type Maker struct {
	Name        string      `json:"name"`
	Role        string      `json:"role"`
	Description string      `json:"description"`
	Followers   int         `json:"followers"`
	Links       []MakerLink `json:"links"`
}

// FlatLinks renders the link list as a single cell value.
func (m Maker) FlatLinks() string {
	parts := make([]string, 0, len(m.Links))
	for _, link := range m.Links {
		parts = append(parts, fmt.Sprintf("%s (%s)", link.Name, link.Url))
	}
	return strings.Join(parts, ", ")
}

type ProductMakers struct {
	ProductName string  `json:"product_name"`
	ProductUrl  string  `json:"product_url"`
	Makers      []Maker `json:"makers"`
}

type threadTweet struct {
	TweetNumber int    `json:"tweet_number"`
	Content     string `json:"content"`
}

type generatedThread struct {
	Tweets []threadTweet `json:"tweets"`
}
