// Package last30days provides a Go client for researching what Reddit and X
// said about a topic over the last 30 days.
//
// Reddit threads are found through the OpenAI Responses API web search tool,
// X posts through the xAI x_search tool or the local bird CLI. Results are
// date-filtered, scored, deduplicated and returned as a Report.
//
//	client, _ := last30days.New(ctx,
//	    last30days.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	    last30days.WithXAI(os.Getenv("XAI_API_KEY")),
//	    last30days.WithFileCache(""),
//	)
//	defer client.Close()
//
//	res, err := client.Research(ctx, "claude code skills",
//	    last30days.Deep(),
//	    last30days.Days(14),
//	)
//	for _, t := range res.Report.Reddit {
//	    fmt.Println(t.Score, t.Title, t.URL)
//	}
//
// # Offline use
//
// WithMock serves every provider call from bundled fixtures, which is
// useful for wiring tests:
//
//	client, _ := last30days.New(ctx, last30days.WithMock())
package last30days
