package amb

import "fmt"

// GetChassisState retrieves the robot's self-reported motion and
// actuator state.
func (c *Client) GetChassisState() (*ChassisState, error) {
	var resp ChassisStateResponse
	if err := c.get("/chassis/state", &resp); err != nil {
		return nil, err
	}
	if err := checkResponse(&resp.Response); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("amb chassis state: empty response")
	}
	return resp.Data, nil
}

// Ping checks connectivity to the robot API.
func (c *Client) Ping() error {
	_, err := c.GetChassisState()
	return err
}
