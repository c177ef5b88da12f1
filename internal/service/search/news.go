package search

import (
	"context"
	"fmt"
	"log"
	"strings"

	"tripagent/internal/model/travel"
)

type newsResponse struct {
	OrganicResults []travel.NewsArticle `json:"organic_results"`
}

// SearchNews queries google_news for the query string. The query itself is
// the request key.
func (c *Client) SearchNews(ctx context.Context, query string) (string, travel.NewsBatch, error) {
	params := c.baseParams("google_news")
	params.Set("q", query)

	log.Printf("[search] news %q", query)

	var resp newsResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", travel.NewsBatch{}, err
	}
	if len(resp.OrganicResults) == 0 {
		return "No news articles found for the given query.", travel.NewsBatch{}, nil
	}

	return parseNews(resp.OrganicResults)
}

// parseNews builds the TOON summary and numbers each article.
func parseNews(articles []travel.NewsArticle) (string, travel.NewsBatch, error) {
	var toon strings.Builder
	fmt.Fprintf(&toon, "news_articles [%d] {idx, title, source, date, snippet}\n", len(articles))

	batch := travel.NewsBatch{Articles: make([]travel.NewsArticle, 0, len(articles))}

	for i, a := range articles {
		a.Idx = i + 1
		batch.Articles = append(batch.Articles, a)

		fmt.Fprintf(&toon, "\t\t%d,%s,%s,%s,%s\n",
			a.Idx, orNA(a.Title), orNA(a.Source), orNA(a.When()), orNA(a.Snippet))
	}

	return toon.String(), batch, nil
}
