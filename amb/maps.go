package amb

import "fmt"

// GetMaps lists the maps known to the robot.
func (c *Client) GetMaps() ([]MapInfo, error) {
	var resp MapsResponse
	if err := c.get("/maps", &resp); err != nil {
		return nil, err
	}
	if err := checkResponse(&resp.Response); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetMapDetail retrieves one map including its named points.
func (c *Client) GetMapDetail(id int64) (*MapDetail, error) {
	var resp MapDetailResponse
	if err := c.get(fmt.Sprintf("/maps/%d", id), &resp); err != nil {
		return nil, err
	}
	if err := checkResponse(&resp.Response); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("amb map %d: empty response", id)
	}
	return resp.Data, nil
}

// GetActiveMapPoints returns the point list of the currently active map.
func (c *Client) GetActiveMapPoints() ([]MapPoint, error) {
	maps, err := c.GetMaps()
	if err != nil {
		return nil, err
	}
	for _, m := range maps {
		if !m.Active {
			continue
		}
		detail, err := c.GetMapDetail(m.ID)
		if err != nil {
			return nil, err
		}
		return detail.Points, nil
	}
	return nil, fmt.Errorf("amb: no active map")
}
