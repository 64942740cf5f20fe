package sorare

const tokensPageQuery = `query PageTokens($cursor: String, $size: Int) {
  tokens {
    allNfts(sport: NBA, after: $cursor, first: $size) {
      nodes { slug }
      pageInfo { endCursor hasNextPage }
    }
  }
}`

const playersInfoQuery = `query PlayersInfo($slugs: [String!]) {
  nbaPlayers(slugs: $slugs) {
    slug
    displayName
    birthDate
    positions
    shirtNumber
    country { code }
    team { name }
  }
}`

const pricesQuery = `query TokenPrices($slug: String!) {
  tokens {
    tokenPrices(playerSlug: $slug, rarity: limited) {
      date
      amountInFiat { eur usd }
    }
  }
}`

const statsQuery = `query PlayersStats($slugs: [String!]) {
  nbaPlayers(slugs: $slugs) {
    slug
    tenGameAverageGameStats { score }
    latestFinalGameStats(last: 10) {
      score
      game { startDate }
      detailedStats { secondsPlayed }
    }
  }
}`

const injuriesQuery = `query PlayersInjuries($slugs: [String!]) {
  nbaPlayers(slugs: $slugs) {
    slug
    playerInjury { startDate updateDateTime description comment }
  }
}`

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLEnvelope[T any] struct {
	Data   *T             `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type tokensPageData struct {
	Tokens struct {
		AllNfts struct {
			Nodes []struct {
				Slug string `json:"slug"`
			} `json:"nodes"`
			PageInfo struct {
				EndCursor   *string `json:"endCursor"`
				HasNextPage bool    `json:"hasNextPage"`
			} `json:"pageInfo"`
		} `json:"allNfts"`
	} `json:"tokens"`
}

type playerInfoItem struct {
	Slug        string   `json:"slug" validate:"required"`
	DisplayName string   `json:"displayName" validate:"required"`
	BirthDate   string   `json:"birthDate"`
	Positions   []string `json:"positions"`
	ShirtNumber int64    `json:"shirtNumber"`
	Country     *struct {
		Code string `json:"code"`
	} `json:"country"`
	Team *struct {
		Name string `json:"name"`
	} `json:"team"`
}

type playersInfoData struct {
	NBAPlayers []playerInfoItem `json:"nbaPlayers"`
}

type tokenPriceItem struct {
	Date         string `json:"date" validate:"required"`
	AmountInFiat struct {
		EUR float64 `json:"eur"`
		USD float64 `json:"usd"`
	} `json:"amountInFiat"`
}

type pricesData struct {
	Tokens struct {
		TokenPrices []tokenPriceItem `json:"tokenPrices"`
	} `json:"tokens"`
}

type gameStatsItem struct {
	Score float64 `json:"score"`
	Game  struct {
		StartDate string `json:"startDate"`
	} `json:"game"`
	DetailedStats *struct {
		SecondsPlayed int64 `json:"secondsPlayed"`
	} `json:"detailedStats"`
}

type playerStatsItem struct {
	Slug                    string `json:"slug" validate:"required"`
	TenGameAverageGameStats struct {
		Score float64 `json:"score"`
	} `json:"tenGameAverageGameStats"`
	LatestFinalGameStats []gameStatsItem `json:"latestFinalGameStats"`
}

type statsData struct {
	NBAPlayers []playerStatsItem `json:"nbaPlayers"`
}

type playerInjuryItem struct {
	Slug         string `json:"slug" validate:"required"`
	PlayerInjury *struct {
		StartDate      string  `json:"startDate"`
		UpdateDateTime *string `json:"updateDateTime"`
		Description    string  `json:"description"`
		Comment        string  `json:"comment"`
	} `json:"playerInjury"`
}

type injuriesData struct {
	NBAPlayers []playerInjuryItem `json:"nbaPlayers"`
}
