package sorare

import (
	"context"
	"math"
	"regexp"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/riskibarqy/socli/internal/domain/player"
	"github.com/riskibarqy/socli/internal/usecase"
)

// tokenSlugRegex keeps the player part of a card slug, e.g.
// kz-okpala-19990428-2022-rare-21 -> kz-okpala-19990428.
var tokenSlugRegex = regexp.MustCompile(`([a-z].*)(-[0-9].*-){1}`)

var _ usecase.RemoteDataSource = (*Client)(nil)

func parsePlayerSlug(tokenSlug string) (string, bool) {
	match := tokenSlugRegex.FindStringSubmatch(tokenSlug)
	if len(match) < 2 || match[1] == "" {
		return "", false
	}
	return match[1], true
}

// PageRoster reads one page of cards and resolves the distinct players on it.
func (c *Client) PageRoster(ctx context.Context, cursor string, size int) ([]player.Player, string, error) {
	variables := map[string]any{"cursor": nil, "size": size}
	if cursor != "" {
		variables["cursor"] = cursor
	}

	page, err := query[tokensPageData](ctx, c, c.graphQLURL, tokensPageQuery, variables)
	if err != nil {
		return nil, "", errors.Wrapf(err, "page tokens at cursor %q", cursor)
	}

	next := ""
	info := page.Tokens.AllNfts.PageInfo
	if info.HasNextPage && info.EndCursor != nil {
		next = *info.EndCursor
	}

	seen := make(map[string]struct{}, len(page.Tokens.AllNfts.Nodes))
	slugs := make([]string, 0, len(page.Tokens.AllNfts.Nodes))
	for _, node := range page.Tokens.AllNfts.Nodes {
		slug, ok := parsePlayerSlug(node.Slug)
		if !ok {
			c.logger.WarnContext(ctx, "skip card with unrecognized slug", "token_slug", node.Slug)
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		slugs = append(slugs, slug)
	}
	if len(slugs) == 0 {
		return nil, next, nil
	}

	players, err := c.playersInfo(ctx, slugs)
	if err != nil {
		return nil, "", err
	}
	return players, next, nil
}

func (c *Client) playersInfo(ctx context.Context, slugs []string) ([]player.Player, error) {
	data, err := query[playersInfoData](ctx, c, c.sportsURL, playersInfoQuery, map[string]any{"slugs": slugs})
	if err != nil {
		return nil, errors.Wrapf(err, "get info for %d players", len(slugs))
	}

	out := make([]player.Player, 0, len(data.NBAPlayers))
	for _, item := range data.NBAPlayers {
		if err := c.validate.Struct(item); err != nil {
			c.logger.WarnContext(ctx, "skip invalid player record", "slug", item.Slug, "error", err)
			continue
		}
		p := player.Player{
			Slug:        item.Slug,
			DisplayName: item.DisplayName,
			BirthDate:   item.BirthDate,
			Positions:   item.Positions,
			Number:      item.ShirtNumber,
		}
		if item.Team != nil {
			team := item.Team.Name
			p.Team = &team
		}
		if item.Country != nil {
			p.Country = item.Country.Code
		}
		out = append(out, p)
	}
	return out, nil
}

// GetPrices returns recent sales for slug, newest first, amounts with two decimals.
func (c *Client) GetPrices(ctx context.Context, slug string) ([]player.Price, error) {
	data, err := query[pricesData](ctx, c, c.graphQLURL, pricesQuery, map[string]any{"slug": slug})
	if err != nil {
		return nil, errors.Wrapf(err, "get prices for %s", slug)
	}

	out := make([]player.Price, 0, len(data.Tokens.TokenPrices))
	for _, item := range data.Tokens.TokenPrices {
		if err := c.validate.Struct(item); err != nil {
			c.logger.WarnContext(ctx, "skip invalid price record", "slug", slug, "error", err)
			continue
		}
		out = append(out, player.Price{
			Slug: slug,
			Date: item.Date,
			EUR:  decimal.NewFromFloat(item.AmountInFiat.EUR).StringFixed(2),
			USD:  decimal.NewFromFloat(item.AmountInFiat.USD).StringFixed(2),
		})
	}
	return out, nil
}

func (c *Client) GetStats(ctx context.Context, slugs []string) ([]player.Stats, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	data, err := query[statsData](ctx, c, c.sportsURL, statsQuery, map[string]any{"slugs": slugs})
	if err != nil {
		return nil, errors.Wrapf(err, "get stats for %d players", len(slugs))
	}

	out := make([]player.Stats, 0, len(data.NBAPlayers))
	for _, item := range data.NBAPlayers {
		if err := c.validate.Struct(item); err != nil {
			c.logger.WarnContext(ctx, "skip invalid stats record", "error", err)
			continue
		}
		games := make([]player.Game, 0, len(item.LatestFinalGameStats))
		for _, game := range item.LatestFinalGameStats {
			var seconds int64
			if game.DetailedStats != nil {
				seconds = game.DetailedStats.SecondsPlayed
			}
			games = append(games, player.Game{
				Date:          game.Game.StartDate,
				DidPlay:       seconds > 0,
				MinutesPlayed: seconds / 60,
				Score:         int64(math.Round(game.Score)),
			})
		}
		out = append(out, player.Stats{
			Slug:  item.Slug,
			Score: int64(math.Round(item.TenGameAverageGameStats.Score)),
			Games: games,
		})
	}
	return out, nil
}

// GetInjuries returns entries only for injured players. Start dates are
// date-only upstream and are widened to RFC 3339.
func (c *Client) GetInjuries(ctx context.Context, slugs []string) ([]player.Injury, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	data, err := query[injuriesData](ctx, c, c.sportsURL, injuriesQuery, map[string]any{"slugs": slugs})
	if err != nil {
		return nil, errors.Wrapf(err, "get injuries for %d players", len(slugs))
	}

	out := make([]player.Injury, 0, len(data.NBAPlayers))
	for _, item := range data.NBAPlayers {
		if item.PlayerInjury == nil {
			continue
		}
		if err := c.validate.Struct(item); err != nil {
			c.logger.WarnContext(ctx, "skip invalid injury record", "error", err)
			continue
		}
		out = append(out, player.Injury{
			Slug:        item.Slug,
			Date:        item.PlayerInjury.StartDate + "T00:00:00Z",
			UpdateDate:  item.PlayerInjury.UpdateDateTime,
			Description: item.PlayerInjury.Description,
			Comment:     item.PlayerInjury.Comment,
		})
	}
	return out, nil
}
