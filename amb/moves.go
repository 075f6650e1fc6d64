package amb

import "fmt"

// CreateMove issues a move command and returns the move id assigned by
// the robot. Send-only success: completion must be observed by polling
// GetMoveStatus.
func (c *Client) CreateMove(req *CreateMoveRequest) (int64, error) {
	var resp CreateMoveResponse
	if err := c.post("/chassis/moves", req, &resp); err != nil {
		return 0, err
	}
	if err := checkResponse(&resp.Response); err != nil {
		return 0, err
	}
	if resp.Data == nil {
		return 0, fmt.Errorf("amb create move: missing move id in response")
	}
	return resp.Data.ID, nil
}

// GetMoveStatus retrieves the current state of a move command.
func (c *Client) GetMoveStatus(id int64) (*MoveDetail, error) {
	var resp MoveStatusResponse
	if err := c.get(fmt.Sprintf("/chassis/moves/%d", id), &resp); err != nil {
		return nil, err
	}
	if err := checkResponse(&resp.Response); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("amb move %d: empty status", id)
	}
	return resp.Data, nil
}

// CancelMove aborts an in-flight move command.
func (c *Client) CancelMove(id int64) error {
	var resp Response
	if err := c.post(fmt.Sprintf("/chassis/moves/%d/cancel", id), nil, &resp); err != nil {
		return err
	}
	return checkResponse(&resp)
}
