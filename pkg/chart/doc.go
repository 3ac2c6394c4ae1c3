// Package chart defines the natal chart data returned by the chart service.
//
// A [Response] carries an optional "person" marker and the computed [Chart].
// The chart holds the bodies ([Planet], including the synthetic Ascendant)
// keyed by name and the twelve houses keyed "House1".."House12".
//
// Planet order matters to the wheel: bodies are assigned to houses in the
// order the service lists them, so [Planets] decodes the JSON object into an
// ordered slice instead of a map.
//
//	var resp chart.Response
//	if err := json.Unmarshal(data, &resp); err != nil {
//	    return err
//	}
//	if !resp.HasChart() {
//	    // render the empty state
//	}
//	if err := resp.Chart.Validate(); err != nil {
//	    return err
//	}
package chart
