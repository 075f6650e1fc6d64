package amb

import "fmt"

// JackUp raises the lift mechanism. The robot acks the command
// immediately; actuator settling is not observable via the API.
func (c *Client) JackUp() error {
	var resp Response
	if err := c.post("/services/jack_up", nil, &resp); err != nil {
		return err
	}
	return checkResponse(&resp)
}

// JackDown lowers the lift mechanism.
func (c *Client) JackDown() error {
	var resp Response
	if err := c.post("/services/jack_down", nil, &resp); err != nil {
		return err
	}
	return checkResponse(&resp)
}

// ReturnToCharger invokes the dedicated return-to-charger service.
func (c *Client) ReturnToCharger() error {
	var resp Response
	if err := c.post("/services/return_to_charger", nil, &resp); err != nil {
		return err
	}
	return checkResponse(&resp)
}

// CreateChargeTask submits a charging task through the generic task API.
func (c *Client) CreateChargeTask() (string, error) {
	var resp CreateTaskResponse
	if err := c.post("/tasks", &TaskRequest{Type: "charge"}, &resp); err != nil {
		return "", err
	}
	if err := checkResponse(&resp.Response); err != nil {
		return "", err
	}
	if resp.Data == nil {
		return "", fmt.Errorf("amb charge task: missing task id in response")
	}
	return resp.Data.ID, nil
}

// LegacyCharge hits the direct charge endpoint kept for older firmware.
func (c *Client) LegacyCharge() error {
	var resp Response
	if err := c.post("/charge", nil, &resp); err != nil {
		return err
	}
	return checkResponse(&resp)
}
